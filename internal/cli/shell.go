package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"penora-write/internal/app"
	"penora-write/internal/domain"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

const shellPrompt = "penora> "

func newStoriesShellCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard: list, edit, delete, clear and export within one session",
		Long: `Reads commands from stdin, one per line, against a single dashboard.
Type "help" for the command list and "exit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if !ws.Session().Authenticated() {
				return domain.ErrNotAuthenticated
			}
			return runShell(cmd.Context(), ws, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// newShellRoot собирает дерево команд оболочки. Дерево создается на каждую строку,
// чтобы флаги предыдущей команды не протекали в следующую.
func newShellRoot(ws *app.Workspace) *cobra.Command {
	workspace := func(context.Context) (*app.Workspace, error) { return ws, nil }

	root := &cobra.Command{
		Use:           "penora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newStoriesListCmd(workspace),
		newStoriesShowCmd(workspace),
		newStoriesEditCmd(workspace),
		newStoriesDeleteCmd(workspace),
		newStoriesClearCmd(workspace),
		newStoriesExportCmd(workspace),
		newStoriesRefetchCmd(workspace),
		newRenameCmd(workspace),
		newThemeCmd(workspace),
		newResetLayoutCmd(workspace),
	)
	return root
}

func runShell(ctx context.Context, ws *app.Workspace, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Dashboard for %s: %d stories. Type \"help\" for commands.\n", ws.Session().DisplayName, len(ws.AllStories()))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		words, err := shellwords.Parse(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if len(words) == 0 {
			continue
		}
		if words[0] == "exit" || words[0] == "quit" {
			return nil
		}

		root := newShellRoot(ws)
		root.SetArgs(words)
		root.SetOut(out)
		root.SetErr(out)
		if err := root.ExecuteContext(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}
