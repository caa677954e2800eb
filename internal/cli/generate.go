package cli

import (
	"fmt"

	"penora-write/internal/domain"
	"penora-write/internal/export"
	"penora-write/internal/viewmodel"

	"github.com/spf13/cobra"
)

type generateFlags struct {
	title      string
	idea       string
	storyType  string
	tone       string
	length     string
	regenerate int
	save       bool
	format     string
	out        string
	copy       bool
}

func newGenerateCmd(e *env) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a story from an idea",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := e.workspace(cmd.Context())
			if err != nil {
				return err
			}
			err = ws.EditDraft(func(c *viewmodel.Composition) error {
				c.SetTitle(f.title)
				c.SetIdea(f.idea)
				st, err := domain.ParseStoryType(f.storyType)
				if err != nil {
					return err
				}
				if err := c.SetStoryType(st); err != nil {
					return err
				}
				tone, err := domain.ParseTone(f.tone)
				if err != nil {
					return err
				}
				if err := c.SetTone(tone); err != nil {
					return err
				}
				l, err := domain.ParseLength(f.length)
				if err != nil {
					return err
				}
				return c.SetLength(l)
			})
			if err != nil {
				return err
			}

			text, err := ws.Generate(cmd.Context())
			if err != nil {
				return err
			}
			for i := 0; i < f.regenerate; i++ {
				if text, err = ws.Regenerate(cmd.Context()); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, text)

			if f.save {
				res, err := ws.SaveDraft(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, res.Message)
			}

			doc := export.FromDraft(ws.Draft())
			if f.format != "" {
				path, err := exportTo(doc, f.format, f.out)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported to %s\n", path)
			}
			if f.copy {
				if err := export.CopyToClipboard(doc); err != nil {
					return err
				}
				fmt.Fprintln(out, "Copied to clipboard")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.title, "title", "", "story title")
	flags.StringVar(&f.idea, "idea", "", "what the story is about")
	flags.StringVar(&f.storyType, "type", string(domain.StoryTypeShort), "short | novel | chapter | poem")
	flags.StringVar(&f.tone, "tone", string(domain.ToneNeutral), "neutral | serious | humorous | romantic")
	flags.StringVar(&f.length, "length", string(domain.LengthMedium), "short | medium | long")
	flags.IntVar(&f.regenerate, "regenerate", 0, "regenerate N more times with the same inputs")
	flags.BoolVar(&f.save, "save", false, "save the result to the dashboard")
	flags.StringVar(&f.format, "export", "", "export format: txt | pdf | docx | html")
	flags.StringVar(&f.out, "out", "", "export file or directory")
	flags.BoolVar(&f.copy, "copy", false, "copy the text to the clipboard")
	_ = cmd.MarkFlagRequired("idea")
	return cmd
}
