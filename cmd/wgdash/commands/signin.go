package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wgdashboard/wgdash/pkg/dashboard"
	"github.com/wgdashboard/wgdash/pkg/terminal"
)

func signInCommand() *cobra.Command {
	var username string
	var totp string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to the dashboard and return to the page that asked for it",
		Args:  cobra.NoArgs,
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
			if username == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
				if username, err = readLine(in); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, in, passwordStdin)
			if err != nil {
				return err
			}

			loc, err := app.Auth.SignIn(cmd.Context(), username, password, totp)
			if err != nil {
				if errors.Is(err, dashboard.ErrInvalidCredentials) {
					return err
				}
				return fmt.Errorf("sign in failed: %w", err)
			}
			printLocation(cmd.OutOrStdout(), app, loc, s.Config())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&username, "username", "u", "", "Account username")
	flags.StringVar(&totp, "totp", "", "One-time password when multi-factor authentication is on")
	flags.BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func signOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the dashboard session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			app, err := s.App(cmd)
			if err != nil {
				return err
			}
			if _, err := app.Auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	stdin := cmd.InOrStdin()
	if !fromStdin && in.Buffered() == 0 && terminal.IsTerminal(stdin) {
		if f, ok := stdin.(*os.File); ok {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			buf, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return string(buf), nil
		}
	}
	return readLine(in)
}

// lineReader returns the buffered reader every line read of one command
// shares. A reader that is already buffered, such as the one the shell hands
// to its commands, is returned as is.
func lineReader(in io.Reader) *bufio.Reader {
	return bufio.NewReader(in)
}

// readLine reads one line, without its line ending.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", io.ErrUnexpectedEOF
	}
	return line, nil
}
