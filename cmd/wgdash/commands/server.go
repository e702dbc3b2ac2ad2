package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wgdashboard/wgdash/cmd/wgdash/hints"
	"github.com/wgdashboard/wgdash/pkg/crossserver"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "server",
		Aliases: []string{"servers"},
		Short:   "Manage cross servers",
	}

	cmd.AddCommand(listServersCommand())
	cmd.AddCommand(addServerCommand())
	cmd.AddCommand(useServerCommand())
	cmd.AddCommand(clearServerCommand())
	cmd.AddCommand(removeServerCommand())
	cmd.AddCommand(importServersCommand())
	cmd.AddCommand(checkServersCommand())
	return cmd
}

func formatFlag(flags *pflag.FlagSet, format *string) {
	flags.StringVar(format, "format", string(crossserver.OutputFormatHumanReadable), fmt.Sprintf("Supported: %s.", strings.Join(crossserver.SupportedFormats(), ", ")))
}

func listServersCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List cross servers, the active one marked with *",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := crossserver.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			return crossserver.List(cmd.Context(), cmd.OutOrStdout(), dao, outputFormat)
		},
	}
	formatFlag(cmd.Flags(), &format)
	return cmd
}

func addServerCommand() *cobra.Command {
	var apiKey string
	var apiKeyStdin bool
	var use bool

	cmd := &cobra.Command{
		Use:   "add <name> <host>",
		Short: "Add a cross server",
		Example: `  # Add a server, reading its API key from stdin
  echo "$KEY" | wgdash server add office https://vpn.example:10086 --api-key-stdin

  # Add a server and switch to it
  wgdash server add office https://vpn.example:10086 --api-key "$KEY" --use`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKeyStdin {
				key, err := readLine(lineReader(cmd.InOrStdin()))
				if err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
				apiKey = key
			}
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			keys, err := s.Keys()
			if err != nil {
				return err
			}
			server, err := crossserver.Add(cmd.Context(), cmd.OutOrStdout(), dao, keys, args[0], args[1], apiKey)
			if err != nil {
				return err
			}
			if use {
				_, err = crossserver.Use(cmd.Context(), cmd.OutOrStdout(), dao, keys, server.ID)
				return err
			}
			hints.Print(cmd.OutOrStdout(), s.Config(), "Switch to it with", "wgdash server use "+server.Name)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&apiKey, "api-key", "", "API key of the server")
	flags.BoolVar(&apiKeyStdin, "api-key-stdin", false, "Read the API key from stdin")
	flags.BoolVar(&use, "use", false, "Make the server the active one")
	cmd.MarkFlagsMutuallyExclusive("api-key", "api-key-stdin")
	return cmd
}

func useServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id-or-name>",
		Short: "Send every request to this cross server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			keys, err := s.Keys()
			if err != nil {
				return err
			}
			_, err = crossserver.Use(cmd.Context(), cmd.OutOrStdout(), dao, keys, args[0])
			return err
		},
	}
}

func clearServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Go back to the configured origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			return crossserver.Clear(cmd.Context(), cmd.OutOrStdout(), dao)
		},
	}
}

func removeServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id-or-name>...",
		Aliases: []string{"remove"},
		Short:   "Remove cross servers and their API keys",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			keys, err := s.Keys()
			if err != nil {
				return err
			}
			for _, arg := range args {
				if err := crossserver.Remove(cmd.Context(), cmd.OutOrStdout(), dao, keys, arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func importServersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import the CrossServerConfiguration exported from the web client (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			keys, err := s.Keys()
			if err != nil {
				return err
			}
			_, err = crossserver.Import(cmd.Context(), cmd.OutOrStdout(), dao, keys, in)
			return err
		},
	}
}

func checkServersCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check [id-or-name...]",
		Short: "Check that cross servers answer the handshake with their API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := crossserver.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			keys, err := s.Keys()
			if err != nil {
				return err
			}
			return crossserver.Check(cmd.Context(), cmd.OutOrStdout(), dao, keys, nil, outputFormat, args...)
		},
	}
	formatFlag(cmd.Flags(), &format)
	return cmd
}
