package cli

import (
	"fmt"

	"penora-write/internal/viewmodel"

	"github.com/spf13/cobra"
)

// Тема и раскладка живут только в памяти, поэтому их команды есть лишь в stories shell
func newSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Display name (theme and layout live in \"penora stories shell\")",
	}
	cmd.AddCommand(newRenameCmd(e.workspace))
	return cmd
}

func newRenameCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Change the display name (local only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.RenameDisplay(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Display name set to %s\n", ws.Session().DisplayName)
			return nil
		},
	}
}

func newThemeCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case len(args) == 0:
			case args[0] == "toggle":
				ws.ToggleTheme()
			default:
				t, err := viewmodel.ParseTheme(args[0])
				if err != nil {
					return err
				}
				ws.SetTheme(t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", ws.Theme())
			return nil
		},
	}
}

func newResetLayoutCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-layout",
		Short: "Reset theme, dashboard filters and editing state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			ws.ResetLayout()
			fmt.Fprintln(cmd.OutOrStdout(), "Layout reset")
			return nil
		},
	}
}
