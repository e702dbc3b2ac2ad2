package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/wgdashboard/wgdash/pkg/router"
)

func shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands in one session, keeping the current route between them",
		Long: `Run wgdash commands line by line in one session. The router, the stores and
the session cookies are shared between lines. Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			app, err := s.App(cmd)
			if err != nil {
				return err
			}

			in := lineReader(cmd.InOrStdin())
			for {
				fmt.Fprint(cmd.ErrOrStderr(), prompt(app.Router.Current()))
				text, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				if err != nil && text == "" {
					fmt.Fprintln(cmd.ErrOrStderr())
					return nil
				}
				args, err := shlex.Split(text)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				switch args[0] {
				case "exit", "quit":
					return nil
				case "shell":
					fmt.Fprintln(cmd.ErrOrStderr(), "Error: already in a shell")
					continue
				}

				line := Root()
				line.SetArgs(args)
				line.SetIn(in)
				line.SetOut(cmd.OutOrStdout())
				line.SetErr(cmd.ErrOrStderr())
				if err := line.ExecuteContext(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
			}
		},
	}
}

func prompt(current *router.Location) string {
	path := "/"
	if current != nil {
		path = current.FullPath()
	}
	return fmt.Sprintf("wgdash %s> ", strings.TrimSpace(path))
}
