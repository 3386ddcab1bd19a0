package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/publish"
	"tasktree/internal/render"
	"tasktree/internal/settings"
	"tasktree/internal/tree"
)

func newAddCmd(app *App) *cobra.Command {
	var parentRef string
	var description string
	priority := model.PriorityNormal
	var estimated int64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (at the top level, or under --parent)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return writeErr(cmd, fmt.Errorf("missing title: %w", model.ErrInvalidArgument))
			}
			parent, err := resolveParent(sess.model, parentRef)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := sess.model.AddNew(parent, title, description, priority, estimated)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), t.ID()))
		},
	}

	cmd.Flags().StringVar(&parentRef, "parent", "", "Parent task (id, id prefix, or title)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description (markdown)")
	cmd.Flags().VarP(newPriorityValue(&priority), "priority", "p", "Priority (important|normal|questionable)")
	cmd.Flags().Var(newDurationValue(&estimated), "estimate", "Estimated time (e.g. 1h30m, or minutes)")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var grouped bool
	var hideCompleted bool
	var priority model.Priority

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := tree.New(sess.model, nil)
			defer p.Close()
			p.SetGrouped(grouped)

			var filters []group.Filter
			if hideCompleted {
				filters = append(filters, group.Incomplete())
			}
			if priority != "" {
				filters = append(filters, group.ByPriority(priority))
			}
			p.SetFilter(group.And(filters...))

			var data any
			if grouped {
				data = groupViews(p, sess.settings)
			} else {
				data = childViews(p, p.Root(), sess.settings)
			}
			st := render.NewStyles(lipgloss.NewRenderer(cmd.OutOrStdout()))
			return writeOut(cmd, app, ok(data, listText(p, sess.settings, render.GlyphsFromEnv(), st)))
		},
	}

	cmd.Flags().BoolVarP(&grouped, "grouped", "g", false, "Group top-level tasks by priority")
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "Hide completed tasks")
	cmd.Flags().Var(newPriorityValue(&priority), "priority", "Only tasks with this priority")
	return cmd
}

// childViews snapshots the visible children of node, recursively.
func childViews(p *tree.Projection, node group.Node, s *settings.Settings) []taskView {
	out := []taskView{}
	for i := 0; i < p.ChildCount(node); i++ {
		ch, err := p.Child(node, i)
		if err != nil {
			continue
		}
		t, isTask := ch.(*model.Task)
		if !isTask {
			continue
		}
		v := newTaskView(t, s, 0)
		v.Subtasks = childViews(p, t, s)
		out = append(out, v)
	}
	return out
}

func groupViews(p *tree.Projection, s *settings.Settings) []groupView {
	root := p.Root()
	out := make([]groupView, 0, root.Len())
	for i := 0; i < root.Len(); i++ {
		n, err := root.Get(i)
		if err != nil {
			continue
		}
		g, isGroup := n.(group.Group)
		if !isGroup {
			continue
		}
		out = append(out, groupView{
			Title:   g.Title(),
			Details: render.GroupDetails(g),
			Tasks:   childViews(p, g, s),
		})
	}
	return out
}

func listText(p *tree.Projection, s *settings.Settings, g render.Glyphs, st render.Styles) string {
	rows := p.Flatten(nil)
	if len(rows) == 0 {
		return "(no tasks)"
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Repeat("  ", r.Depth))
		b.WriteString(render.Line(r.Node, s, g, st))
		if t := r.Task(); t != nil {
			b.WriteString("  " + st.Details.Render(t.ID()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newShowCmd(app *App) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task",
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
			md, err := publish.RenderTaskMarkdown(sess.model, t.ID(), publish.RenderOptions{
				IncludeCompleted: true,
				Settings:         sess.settings,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, depth), renderMarkdownFor(cmd.OutOrStdout(), md)))
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 1, "Levels of subtasks to include (-1 = all)")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var title string
	var description string
	var parentRef string
	var toRoot bool
	var priority model.Priority
	var estimated int64

	cmd := &cobra.Command{
		Use:   "update <task>",
		Short: "Edit a task's fields; --parent/--root relocates it to the end of the new parent",
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

			flags := cmd.Flags()
			newParent := t.Parent()
			switch {
			case toRoot && flags.Changed("parent"):
				return writeErr(cmd, fmt.Errorf("--root and --parent are exclusive: %w", model.ErrInvalidArgument))
			case toRoot:
				newParent = nil
			case flags.Changed("parent"):
				if newParent, err = resolveParent(sess.model, parentRef); err != nil {
					return writeErr(cmd, err)
				}
			}
			if !flags.Changed("title") {
				title = t.Title()
			}
			if !flags.Changed("description") {
				description = t.Description()
			}
			if !flags.Changed("priority") {
				priority = t.Priority()
			}
			if !flags.Changed("estimate") {
				estimated = t.StoredEstimatedTime()
			}
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, fmt.Errorf("empty title: %w", model.ErrInvalidArgument))
			}

			if err := sess.model.UpdateTask(t, newParent, title, description, priority, estimated); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), "updated "+t.ID()))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description (markdown)")
	cmd.Flags().StringVar(&parentRef, "parent", "", "New parent task")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to the top level")
	cmd.Flags().VarP(newPriorityValue(&priority), "priority", "p", "New priority")
	cmd.Flags().Var(newDurationValue(&estimated), "estimate", "New estimated time")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <task>",
		Aliases: []string{"rm"},
		Short:   "Delete a task and all of its subtasks",
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
			removed := 0
			sess.model.Walk(func(x *model.Task, _ int) bool {
				if x == t || t.IsAncestorOf(x) {
					removed++
				}
				return true
			})
			if err := sess.model.DeleteTask(t); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{"id": t.ID(), "removed": removed}
			return writeOut(cmd, app, ok(data, fmt.Sprintf("deleted %s (%d tasks)", t.ID(), removed)))
		},
	}
	return cmd
}
