package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				text := ""
				for _, t := range topics {
					text += t + "\n"
				}
				return writeOut(cmd, app, ok(map[string]any{"topics": topics}, text))
			}

			topic := args[0]
			body, found := docs.Get(topic)
			if !found {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `tasktree docs` to list topics)", topic))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			data := map[string]any{"topic": topic, "markdown": body}
			return writeOut(cmd, app, ok(data, renderMarkdownFor(cmd.OutOrStdout(), body)))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	return cmd
}
