package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasktree/internal/publish"
)

func newExportCmd(app *App) *cobra.Command {
	var as string
	var out string
	var title string
	var includeCompleted bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as json, markdown or html",
		Example: `  tasktree export --as json --out backup.json
  tasktree export --as markdown --out -
  tasktree export --as html --out tasks.html --title "Sprint 12"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.WriteOptions{
				Format:           as,
				Title:            title,
				IncludeCompleted: includeCompleted,
				Overwrite:        overwrite,
				Settings:         sess.settings,
			}
			out = strings.TrimSpace(out)
			if out == "" {
				return writeErr(cmd, errors.New("missing --out (a file path, or - for stdout)"))
			}
			if out == "-" {
				b, err := publish.Render(sess.model, opt)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			res, err := publish.Export(sess.model, out, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(res, "wrote "+strings.Join(res.Written, ", ")))
		},
	}

	cmd.Flags().StringVar(&as, "as", publish.FormatJSON, fmt.Sprintf("Export format (%s)", strings.Join(publish.Formats(), "|")))
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (- for stdout)")
	cmd.Flags().StringVar(&title, "title", "", "Document title (markdown/html)")
	cmd.Flags().BoolVar(&includeCompleted, "include-completed", true, "Include completed tasks (markdown/html)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")
	return cmd
}

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var title string
	var includeCompleted bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write a markdown site: index.md plus one page per task",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteSite(sess.model, toDir, publish.WriteOptions{
				Title:            title,
				IncludeCompleted: includeCompleted,
				Overwrite:        overwrite,
				Settings:         sess.settings,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(res, fmt.Sprintf("wrote %d files to %s", len(res.Written), toDir)))
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&title, "title", "", "Index title")
	cmd.Flags().BoolVar(&includeCompleted, "include-completed", true, "Include completed tasks")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	return cmd
}
