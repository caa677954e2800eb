package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"penora-write/internal/app"
	"penora-write/internal/domain"
	"penora-write/internal/export"
	"penora-write/internal/stories"
	"penora-write/internal/viewmodel"

	"github.com/spf13/cobra"
)

// workspaceFunc отдает Workspace команде: отдельный запуск создает его заново,
// оболочка stories shell держит один на всю сессию.
type workspaceFunc func(ctx context.Context) (*app.Workspace, error)

func newStoriesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Browse, edit and export saved stories",
		Long: `Each penora invocation reloads the dashboard from the Account Service.
Dashboard changes (edit, delete, clear) are local, so they are made inside
"penora stories shell", which keeps one dashboard for the whole session.`,
	}
	cmd.AddCommand(
		newStoriesListCmd(e.workspace),
		newStoriesEditCmd(e.workspace),
		newStoriesExportCmd(e.workspace),
		newStoriesShellCmd(e),
	)
	return cmd
}

func newStoriesListCmd(workspace workspaceFunc) *cobra.Command {
	var filter, search, sort string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories with optional type filter, search and sort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			// Параметры выборки меняются только явно заданными флагами,
			// поэтому в оболочке фильтр сохраняется между командами
			err = ws.Dashboard(func(d *viewmodel.Dashboard) error {
				if cmd.Flags().Changed("type") {
					if err := d.SetFilter(filter); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("search") {
					d.SetSearch(search)
				}
				if cmd.Flags().Changed("sort") {
					return d.SetSort(stories.SortOrder(strings.ToLower(sort)))
				}
				return nil
			})
			if err != nil {
				return err
			}
			return printStories(cmd.OutOrStdout(), ws.Stories())
		},
	}
	cmd.Flags().StringVar(&filter, "type", "all", "all | short | novel | chapter | poem")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive title/body search")
	cmd.Flags().StringVar(&sort, "sort", string(stories.SortNewest), "newest | oldest")
	return cmd
}

func printStories(out io.Writer, list []domain.Story) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No stories yet")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSAVED\tSTATE\tTITLE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.StoryType, formatSavedAt(s), s.SyncState, s.Title)
	}
	return tw.Flush()
}

func formatSavedAt(s domain.Story) string {
	if s.SavedAt.IsZero() {
		return "-"
	}
	return s.SavedAt.Local().Format("2006-01-02 15:04")
}

func printStory(out io.Writer, s domain.Story) {
	fmt.Fprintf(out, "%s [%s] %s\n\n%s\n", s.Title, s.StoryType, formatSavedAt(s), s.Body)
}

func newStoriesEditCmd(workspace workspaceFunc) *cobra.Command {
	var title, body, storyType, exportFormat, out string
	var printText bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Save an edited copy of a story as a new story (the original is kept)",
		Long: `The copy is a local dashboard story. Outside "penora stories shell" it lives
only for this invocation, so use --print or --export to keep the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.StartEdit(args[0]); err != nil {
				return err
			}
			err = ws.Dashboard(func(d *viewmodel.Dashboard) error {
				_, fields, _ := d.Editing()
				if cmd.Flags().Changed("title") {
					fields.Title = title
				}
				if cmd.Flags().Changed("body") {
					fields.Body = body
				}
				if storyType != "" {
					st, err := domain.ParseStoryType(storyType)
					if err != nil {
						return err
					}
					fields.StoryType = st
				}
				return d.UpdateEdit(fields)
			})
			if err != nil {
				ws.CancelEdit()
				return err
			}
			created, err := ws.SaveEditAsNew()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Saved as new story %s (%s)\n", created.ID, created.Title)

			if printText {
				fmt.Fprintln(w)
				printStory(w, created)
			}
			if exportFormat != "" {
				path, err := exportTo(export.FromStory(created), exportFormat, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Exported to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	cmd.Flags().StringVar(&storyType, "type", "", "new story type")
	cmd.Flags().BoolVar(&printText, "print", false, "print the new story")
	cmd.Flags().StringVar(&exportFormat, "export", "", "export the new story: txt | pdf | docx | html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "export file or directory (default: current directory)")
	return cmd
}

func newStoriesShowCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			s, err := ws.Story(args[0])
			if err != nil {
				return err
			}
			printStory(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newStoriesDeleteCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a story from the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			if ws.DeleteStory(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No story %s\n", args[0])
			}
			return nil
		},
	}
}

func newStoriesClearCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all stories from the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			ws.ClearDashboard()
			fmt.Fprintln(cmd.OutOrStdout(), "Dashboard cleared")
			return nil
		},
	}
}

func newStoriesRefetchCmd(workspace workspaceFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "refetch",
		Short: "Reload stories from the Account Service and merge them with local ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.Refetch(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d stories\n", len(ws.AllStories()))
			return nil
		},
	}
}

func newStoriesExportCmd(workspace workspaceFunc) *cobra.Command {
	var format, out string
	var copyText bool
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a story as txt, pdf, docx or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace(cmd.Context())
			if err != nil {
				return err
			}
			s, err := ws.Story(args[0])
			if err != nil {
				return err
			}
			doc := export.FromStory(s)
			if copyText {
				if err := export.CopyToClipboard(doc); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Copied to clipboard")
				return nil
			}
			path, err := exportTo(doc, format, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatText), "txt | pdf | docx | html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: current directory)")
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the text to the clipboard instead of writing a file")
	return cmd
}

// exportTo пишет документ в файл. out - файл, каталог или пусто (текущий каталог).
func exportTo(doc export.Document, formatName, out string) (string, error) {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return "", err
	}
	path := out
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.FileName(doc.Title, format))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.Render(f, format, doc); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
