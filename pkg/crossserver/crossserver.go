// Package crossserver manages the alternate dashboards a client can switch
// to. At most one of them is active; while it is, every request goes to its
// host with its API key.
package crossserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/validate"
)

type Server struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name" validate:"required"`
	Host      string    `json:"host" yaml:"host" validate:"required,dashboardurl"`
	Active    bool      `json:"active" yaml:"active"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func NewFromDb(s *db.CrossServer) Server {
	return Server{
		ID:        s.ID,
		Name:      s.Name,
		Host:      s.Host,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}

func (s Server) ToDb() db.CrossServer {
	return db.CrossServer{
		ID:        s.ID,
		Name:      s.Name,
		Host:      s.Host,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}

func (s Server) Validate() error {
	return validate.Struct(s)
}

// Add stores a new cross server and its API key. The server is not activated.
func Add(ctx context.Context, w io.Writer, dao db.CrossServerDAO, keys *credstore.Store, name, host, apiKey string) (*Server, error) {
	server := Server{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Host:      strings.TrimRight(strings.TrimSpace(host), "/"),
		CreatedAt: time.Now().UTC(),
	}
	if err := server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cross server: %w", err)
	}
	if apiKey == "" {
		return nil, errors.New("invalid cross server: API key is required")
	}

	if err := dao.CreateCrossServer(ctx, server.ToDb()); err != nil {
		if db.IsDuplicateNameError(err) {
			return nil, fmt.Errorf("cross server named %s already exists", server.Name)
		}
		return nil, fmt.Errorf("failed to create cross server: %w", err)
	}
	if err := keys.SaveAPIKey(server.ID, apiKey); err != nil {
		_ = dao.RemoveCrossServer(ctx, server.ID)
		return nil, err
	}

	fmt.Fprintf(w, "Added cross server %s (%s)\n", server.Name, server.ID)
	return &server, nil
}

func find(ctx context.Context, dao db.CrossServerDAO, idOrName string) (*db.CrossServer, error) {
	server, err := dao.FindCrossServer(ctx, idOrName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cross server %s not found", idOrName)
		}
		return nil, fmt.Errorf("failed to get cross server: %w", err)
	}
	return server, nil
}

// Servers returns every cross server, oldest first.
func Servers(ctx context.Context, dao db.CrossServerDAO) ([]Server, error) {
	dbServers, err := dao.ListCrossServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cross servers: %w", err)
	}
	servers := make([]Server, len(dbServers))
	for i := range dbServers {
		servers[i] = NewFromDb(&dbServers[i])
	}
	return servers, nil
}

func List(ctx context.Context, w io.Writer, dao db.CrossServerDAO, format OutputFormat) error {
	servers, err := Servers(ctx, dao)
	if err != nil {
		return err
	}

	if len(servers) == 0 && format == OutputFormatHumanReadable {
		fmt.Fprintln(w, "No cross servers found. Use `wgdash server add <name> <host>` to add one.")
		return nil
	}

	var data []byte
	switch format {
	case OutputFormatHumanReadable:
		data = []byte(printListHumanReadable(servers))
	case OutputFormatJSON:
		data, err = json.MarshalIndent(servers, "", "  ")
	case OutputFormatYAML:
		data, err = yaml.Marshal(servers)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal cross servers: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

func printListHumanReadable(servers []Server) string {
	lines := ""
	for _, server := range servers {
		marker := " "
		if server.Active {
			marker = "*"
		}
		lines += fmt.Sprintf("%s\t%s\t%s\t%s\n", marker, server.ID, server.Name, server.Host)
	}
	lines = strings.TrimSuffix(lines, "\n")
	return fmt.Sprintf(" \tID\tName\tHost\n \t----\t----\t----\n%s", lines)
}

// Use makes the named server the only active one.
func Use(ctx context.Context, w io.Writer, dao db.CrossServerDAO, keys *credstore.Store, idOrName string) (*Server, error) {
	dbServer, err := find(ctx, dao, idOrName)
	if err != nil {
		return nil, err
	}
	if _, err := keys.APIKey(dbServer.ID); err != nil {
		return nil, err
	}
	if err := dao.ActivateCrossServer(ctx, dbServer.ID); err != nil {
		return nil, fmt.Errorf("failed to activate cross server: %w", err)
	}

	server := NewFromDb(dbServer)
	server.Active = true
	fmt.Fprintf(w, "Using cross server %s (%s)\n", server.Name, server.Host)
	return &server, nil
}

// Clear deactivates every cross server; requests go back to the origin.
func Clear(ctx context.Context, w io.Writer, dao db.CrossServerDAO) error {
	if err := dao.DeactivateCrossServers(ctx); err != nil {
		return fmt.Errorf("failed to clear cross server selection: %w", err)
	}
	fmt.Fprintln(w, "Cleared cross server selection")
	return nil
}

// Remove deletes a cross server and its API key.
func Remove(ctx context.Context, w io.Writer, dao db.CrossServerDAO, keys *credstore.Store, idOrName string) error {
	server, err := find(ctx, dao, idOrName)
	if err != nil {
		return err
	}
	if err := dao.RemoveCrossServer(ctx, server.ID); err != nil {
		return fmt.Errorf("failed to remove cross server: %w", err)
	}
	if err := keys.Delete(server.ID); err != nil {
		return err
	}

	fmt.Fprintf(w, "Removed cross server %s\n", server.Name)
	return nil
}

// Active returns the active cross server, nil when requests go to the origin.
func Active(ctx context.Context, dao db.CrossServerDAO) (*Server, error) {
	dbServer, err := dao.GetActiveCrossServer(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active cross server: %w", err)
	}
	server := NewFromDb(dbServer)
	return &server, nil
}
