package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"penora-write/internal/session"

	"github.com/spf13/cobra"
)

// readPassword берет пароль из флага или первой строки stdin
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(e *env) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in with username and password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			sess, err := ws.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d stories)\n", sess.DisplayName, len(ws.AllStories()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newSignupCmd(e *env) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account; log in afterwards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			msg, err := ws.Signup(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Signup successful"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. Now run: penora login %s\n", strings.TrimRight(msg, "."), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newGoogleLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "google-login <id-token>",
		Short: "Log in with a Google ID token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := ws.FederatedLogin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.DisplayName)
			return nil
		},
	}
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and the local story list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			sess := ws.Session()
			if !sess.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", sess.DisplayName, sess.Email)
			if id, ok := session.ParseIdentity(sess.Credential); ok && !id.ExpiresAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Token expires %s\n", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
