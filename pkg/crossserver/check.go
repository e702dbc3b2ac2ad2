package crossserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/log"
)

const maxConcurrentChecks = 8

type CheckResult struct {
	Server    Server        `json:"server" yaml:"server"`
	Reachable bool          `json:"reachable" yaml:"reachable"`
	Status    int           `json:"status,omitempty" yaml:"status,omitempty"`
	Latency   time.Duration `json:"latency" yaml:"latency"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckServers shakes hands with every server concurrently. A server is
// reachable when /api/handshake answers 200 with a true status for its API
// key. Results keep the order of servers.
func CheckServers(ctx context.Context, keys *credstore.Store, httpClient *http.Client, servers []Server) []CheckResult {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	results := make([]CheckResult, len(servers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, server := range servers {
		g.Go(func() error {
			results[i] = checkOne(ctx, keys, httpClient, server)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func checkOne(ctx context.Context, keys *credstore.Store, httpClient *http.Client, server Server) CheckResult {
	result := CheckResult{Server: server}

	apiKey, err := keys.APIKey(server.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.Host+"/api/handshake", nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header = fetch.Headers(&fetch.Selection{Host: server.Host, APIKey: apiKey})

	start := time.Now()
	resp, err := httpClient.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	result.Status = resp.StatusCode

	var body fetch.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("invalid handshake response: %v", err)
		return result
	}
	if resp.StatusCode != http.StatusOK || !body.Status {
		result.Error = fmt.Sprintf("handshake refused: %d %s", resp.StatusCode, body.Message)
		return result
	}

	log.Debugf("- %s answered in %s", server.Host, result.Latency)
	result.Reachable = true
	return result
}

// Check prints the handshake results of the named servers, or of every
// server when none are named.
func Check(ctx context.Context, w io.Writer, dao db.CrossServerDAO, keys *credstore.Store, httpClient *http.Client, format OutputFormat, idsOrNames ...string) error {
	var servers []Server
	if len(idsOrNames) == 0 {
		all, err := Servers(ctx, dao)
		if err != nil {
			return err
		}
		servers = all
	}
	for _, idOrName := range idsOrNames {
		server, err := find(ctx, dao, idOrName)
		if err != nil {
			return err
		}
		servers = append(servers, NewFromDb(server))
	}
	if len(servers) == 0 && format == OutputFormatHumanReadable {
		fmt.Fprintln(w, "No cross servers found. Use `wgdash server add <name> <host>` to add one.")
		return nil
	}

	data, err := marshalCheck(CheckServers(ctx, keys, httpClient, servers), format)
	if err != nil {
		return fmt.Errorf("failed to marshal check results: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printCheckHumanReadable(results []CheckResult) string {
	lines := ""
	for _, r := range results {
		state := "ok"
		if !r.Reachable {
			state = "unreachable: " + r.Error
		}
		lines += fmt.Sprintf("%s\t%s\t%s\t%s\n", r.Server.Name, r.Server.Host, r.Latency.Round(time.Millisecond), state)
	}
	lines = strings.TrimSuffix(lines, "\n")
	return fmt.Sprintf("Name\tHost\tLatency\tState\n----\t----\t----\t----\n%s", lines)
}

func marshalCheck(results []CheckResult, format OutputFormat) ([]byte, error) {
	switch format {
	case OutputFormatHumanReadable:
		return []byte(printCheckHumanReadable(results)), nil
	case OutputFormatJSON:
		return json.MarshalIndent(results, "", "  ")
	case OutputFormatYAML:
		return yaml.Marshal(results)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
