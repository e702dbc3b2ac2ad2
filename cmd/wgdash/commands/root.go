package commands

import (
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	origin     string
	logLevel   string
	dbFile     string
}

// Root returns the wgdash command tree. The command context must carry a
// Session (see WithSession).
func Root() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "wgdash",
		Short:         "Navigate and call a WGDashboard server from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			return s.configure(&opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration file (default ~/.wgdash/config.yaml)")
	flags.StringVar(&opts.origin, "origin", "", "Dashboard URL used when no cross server is active")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.dbFile, "db", "", "State database file (default ~/.wgdash/wgdash.db)")

	cmd.AddCommand(serverCommand())
	cmd.AddCommand(apiCommand())
	cmd.AddCommand(openCommand())
	cmd.AddCommand(routesCommand())
	cmd.AddCommand(signInCommand())
	cmd.AddCommand(signOutCommand())
	cmd.AddCommand(messagesCommand())
	cmd.AddCommand(shellCommand())
	return cmd
}
