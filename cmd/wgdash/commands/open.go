package commands

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wgdashboard/wgdash/cmd/wgdash/formatting"
	"github.com/wgdashboard/wgdash/cmd/wgdash/hints"
	"github.com/wgdashboard/wgdash/pkg/config"
	"github.com/wgdashboard/wgdash/pkg/dashboard"
	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/router"
	"github.com/wgdashboard/wgdash/pkg/terminal"
)

func openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate to a dashboard route, signing in first if the session ended",
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
			loc, err := app.Open(cmd.Context(), args[0])
			if err != nil {
				if fetch.IsUnauthorized(err) || errors.Is(err, router.ErrNavigationSuperseded) {
					hints.Print(cmd.ErrOrStderr(), s.Config(), "Sign in again with", "wgdash signin")
				}
				return err
			}
			printLocation(cmd.OutOrStdout(), app, loc, s.Config())
			return nil
		},
	}
}

func printLocation(w io.Writer, app *dashboard.App, loc *router.Location, cfg *config.Config) {
	name := loc.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "Route:  %s (%s)\n", name, loc.FullPath())
	fmt.Fprintf(w, "Title:  %s\n", app.Store.Title())
	if len(loc.Params) > 0 {
		fmt.Fprintf(w, "Params: %s\n", formatParams(loc.Params))
	}
	if loc.Path == dashboard.SignInPath {
		hints.Print(w, cfg, "Sign in with", "wgdash signin")
		return
	}
	if loc.Name == "WireGuard Configurations" || loc.Name == "Dashboard" {
		printConfigurations(w, app.Configurations.List())
	}
}

// formatParams lists route parameters sorted by name.
func formatParams(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, ", ")
}

func printConfigurations(w io.Writer, configurations []dashboard.WireGuardConfiguration) {
	if len(configurations) == 0 {
		return
	}
	rows := make([][]string, 0, len(configurations))
	for _, c := range configurations {
		status := "down"
		if c.Status {
			status = "up"
		}
		rows = append(rows, []string{
			c.Name,
			status,
			c.Address,
			fmt.Sprintf("%d/%d", c.ConnectedPeers, c.TotalPeers),
			c.PublicKey,
		})
	}
	formatting.SortRows(rows)
	fmt.Fprintln(w)
	widths := terminal.ColumnWidths(terminal.Width(w), []int{16, 4, 20, 9, 0})
	formatting.PrettyPrintTable(w, rows, widths, []string{"NAME", "STATUS", "ADDRESS", "PEERS", "PUBLIC KEY"})
}

func routesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the dashboard route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := router.New(dashboard.Routes()...)
			if err != nil {
				return err
			}
			entries := r.Entries()
			if format != "human" {
				return printValue(cmd.OutOrStdout(), entries, format)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				auth := ""
				if e.Meta.RequiresAuth {
					auth = "yes"
				}
				rows = append(rows, []string{e.Path, e.Name, e.Meta.Title, auth})
			}
			widths := terminal.ColumnWidths(terminal.Width(cmd.OutOrStdout()), []int{0, 0, 0, 4})
			formatting.PrettyPrintTable(cmd.OutOrStdout(), rows, widths, []string{"PATH", "NAME", "TITLE", "AUTH"})
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "human", "Supported: human, json, yaml.")
	return cmd
}
