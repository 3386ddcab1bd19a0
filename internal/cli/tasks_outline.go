package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/model"
)

func newMoveCmd(app *App) *cobra.Command {
	var parentRef string
	var toRoot bool
	var index int

	cmd := &cobra.Command{
		Use:   "move <task>",
		Short: "Move a task under --parent (or to the top level with --root) at --index",
		Long: `Move a task under another parent, or to the top level.

--index is the position among the destination's children; -1 (the default) appends, and
an index past the end appends too. A task cannot be moved under itself or its subtasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if toRoot == cmd.Flags().Changed("parent") {
				return writeErr(cmd, fmt.Errorf("exactly one of --parent or --root is required: %w", model.ErrInvalidArgument))
			}
			var parent *model.Task
			if !toRoot {
				if parent, err = resolveParent(sess.model, parentRef); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := sess.model.MoveTask(t, parent, index); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(positionView(sess.model, t), "moved "+t.ID()))
		},
	}

	cmd.Flags().StringVar(&parentRef, "parent", "", "Destination parent task")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to the top level")
	cmd.Flags().IntVar(&index, "index", -1, "Position among the destination's children (-1 = append)")
	return cmd
}

func newUpCmd(app *App) *cobra.Command {
	return newShiftCmd(app, "up", "Swap a task with its previous sibling", (*model.Model).MoveUp)
}

func newDownCmd(app *App) *cobra.Command {
	return newShiftCmd(app, "down", "Swap a task with its next sibling", (*model.Model).MoveDown)
}

func newShiftCmd(app *App, use, short string, shift func(*model.Model, *model.Task) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
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
			if err := shift(sess.model, t); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			pos := positionView(sess.model, t)
			return writeOut(cmd, app, ok(pos, fmt.Sprintf("%s at index %d", t.ID(), pos["index"])))
		},
	}
}

func positionView(m *model.Model, t *model.Task) map[string]any {
	out := map[string]any{"id": t.ID(), "parentId": nil}
	if p := t.Parent(); p != nil {
		out["parentId"] = p.ID()
		out["index"] = p.IndexOf(t)
		return out
	}
	for i, r := range m.Roots() {
		if r == t {
			out["index"] = i
		}
	}
	return out
}
