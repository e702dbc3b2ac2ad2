package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wgdashboard/wgdash/cmd/wgdash/hints"
	"github.com/wgdashboard/wgdash/pkg/fetch"
)

type apiOptions struct {
	params []string
	data   string
	query  string
	format string
}

func apiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Call the dashboard REST API",
		Long: `Call the dashboard REST API with the session cookie, or with the API key of
the active cross server. A failed call ends the session: run wgdash signin again.`,
	}

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		cmd.AddCommand(apiMethodCommand(method))
	}
	return cmd
}

func apiMethodCommand(method string) *cobra.Command {
	var opts apiOptions
	name := strings.ToLower(method)

	cmd := &cobra.Command{
		Use:   name + " <path>",
		Short: method + " a dashboard API path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			app, err := s.App(cmd)
			if err != nil {
				return err
			}

			var body any
			if opts.data != "" {
				if err := json.Unmarshal([]byte(opts.data), &body); err != nil {
					return fmt.Errorf("--data is not valid JSON: %w", err)
				}
			}

			ctx := cmd.Context()
			var result any
			switch method {
			case http.MethodGet:
				params, perr := parseParams(opts.params)
				if perr != nil {
					return perr
				}
				err = app.Client.Get(ctx, args[0], params, &result)
			case http.MethodPost:
				err = app.Client.Post(ctx, args[0], body, &result)
			case http.MethodPut:
				err = app.Client.Put(ctx, args[0], body, &result)
			case http.MethodDelete:
				err = app.Client.Delete(ctx, args[0], &result)
			}
			if err != nil {
				if fetch.IsUnauthorized(err) {
					hints.Print(cmd.ErrOrStderr(), s.Config(), "Sign in again with", "wgdash signin")
				}
				return err
			}

			if opts.query != "" {
				result, err = jsonpath.Get(opts.query, result)
				if err != nil {
					return fmt.Errorf("--query %s: %w", opts.query, err)
				}
			}
			return printValue(cmd.OutOrStdout(), result, opts.format)
		},
	}

	flags := cmd.Flags()
	if method == http.MethodGet {
		flags.StringArrayVar(&opts.params, "param", nil, "Query parameter <key>=<value> (repeatable)")
	}
	if method == http.MethodPost || method == http.MethodPut {
		flags.StringVar(&opts.data, "data", "", "JSON request body")
	}
	flags.StringVar(&opts.query, "query", "", "JSONPath expression applied to the response, e.g. $.data[*].Name")
	flags.StringVar(&opts.format, "format", "json", "Supported: json, yaml.")
	return cmd
}

func parseParams(raw []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected <key>=<value>", p)
		}
		params.Add(key, value)
	}
	return params, nil
}

func printValue(w io.Writer, v any, format string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	_, err = fmt.Fprintln(w, strings.TrimSuffix(string(data), "\n"))
	return err
}
