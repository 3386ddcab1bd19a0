package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/model"
	"tasktree/internal/render"
)

func newCompleteCmd(app *App) *cobra.Command {
	var actual int64

	cmd := &cobra.Command{
		Use:     "complete <task>",
		Aliases: []string{"done"},
		Short:   "Mark a task completed (stops its timer)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			setActual := cmd.Flags().Changed("actual")
			if !setActual && shouldAskActual(sess, t) {
				if p := app.prompter(); p != nil {
					v, asked, err := askActual(p, t)
					if err != nil {
						return writeErr(cmd, err)
					}
					actual, setActual = v, asked
				}
			}
			if setActual {
				if err := sess.model.UpdateActualTime(t, actual); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := sess.model.CompleteTask(t); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), "completed "+t.ID()))
		},
	}

	cmd.Flags().Var(newDurationValue(&actual), "actual", "Record the actual time spent (e.g. 50m)")
	return cmd
}

// shouldAskActual reports whether completing t should ask for the time spent.
// Parents report aggregated time, so only leaves are asked.
func shouldAskActual(sess *session, t *model.Task) bool {
	s := sess.settings
	return s.AskActualWhenCompleteTask() && s.EnableActualTime() && t.Len() == 0 && !t.Completed()
}

// askActual prompts until the answer parses. An empty answer keeps the recorded time.
func askActual(p Prompter, t *model.Task) (int64, bool, error) {
	label := fmt.Sprintf("Actual time for %q [%s]: ", t.Title(), render.FormatDuration(t.StoredActualTime()))
	for {
		line, err := p.Prompt(label)
		if err != nil {
			if errors.Is(err, errPromptAborted) {
				return 0, false, nil
			}
			return 0, false, err
		}
		if line == "" {
			return 0, false, nil
		}
		sec, err := parseDuration(line)
		if err == nil {
			return sec, true, nil
		}
		label = "Try again (e.g. 1h30m or minutes): "
	}
}

func newUncompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "uncomplete <task>",
		Aliases: []string{"reopen"},
		Short:   "Mark a task not completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.model.UncompleteTask(t); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), "reopened "+t.ID()))
		},
	}
}

func newHighlightCmd(app *App) *cobra.Command {
	var kind model.HighlightingType
	var off bool
	var cycle bool

	cmd := &cobra.Command{
		Use:   "highlight <task>",
		Short: "Highlight a task with a colored star (red, yellow or green)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			m := sess.model

			switch {
			case off:
				err = m.UnhighlightTask(t)
			case cycle:
				if !t.Highlighted() {
					err = m.HighlightTask(t)
				} else {
					err = m.SetTaskHighlightingType(t, t.HighlightingType().Next())
				}
			default:
				if kind != "" {
					if err = m.SetTaskHighlightingType(t, kind); err != nil {
						break
					}
				}
				if !t.Highlighted() {
					err = m.HighlightTask(t)
				}
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			text := "unhighlighted " + t.ID()
			if t.Highlighted() {
				text = fmt.Sprintf("highlighted %s (%s)", t.ID(), t.HighlightingType())
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), text))
		},
	}

	cmd.Flags().Var(newHighlightValue(&kind), "type", "Star color (red|yellow|green)")
	cmd.Flags().BoolVar(&off, "off", false, "Remove the highlight")
	cmd.Flags().BoolVar(&cycle, "cycle", false, "Highlight, or advance to the next color")
	cmd.MarkFlagsMutuallyExclusive("off", "cycle", "type")
	return cmd
}
