// Package publish renders the task tree as Markdown, HTML or a JSON snapshot and writes it to disk.
package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"tasktree/internal/model"
	"tasktree/internal/render"
	"tasktree/internal/settings"
)

type RenderOptions struct {
	// IncludeCompleted keeps completed tasks (and their subtrees) in the output.
	IncludeCompleted bool
	// LinkTasks turns index lines into links to per-task pages (tasks/<id>.md).
	LinkTasks bool
	Settings  *settings.Settings
}

// RenderIndexMarkdown renders every task as a nested GFM task list.
func RenderIndexMarkdown(m *model.Model, title string, opt RenderOptions) string {
	var buf bytes.Buffer
	if strings.TrimSpace(title) == "" {
		title = "Tasks"
	}
	buf.WriteString("# " + strings.TrimSpace(title) + "\n\n")

	total, done := 0, 0
	for _, r := range m.Roots() {
		total++
		if r.Completed() {
			done++
		}
	}
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	fmt.Fprintf(&buf, "%d Tasks, %d%% Completed\n\n", total, pct)

	for _, r := range m.Roots() {
		renderTaskLine(&buf, r, 0, opt)
	}
	return buf.String()
}

func renderTaskLine(buf *bytes.Buffer, t *model.Task, depth int, opt RenderOptions) {
	if t.Completed() && !opt.IncludeCompleted {
		return
	}
	box := " "
	if t.Completed() {
		box = "x"
	}
	title := escapeInline(t.Title())
	if opt.LinkTasks {
		title = fmt.Sprintf("[%s](tasks/%s.md)", title, t.ID())
	}
	line := fmt.Sprintf("%s- [%s] %s%s", strings.Repeat("  ", depth), box, priorityMark(render.EffectivePriority(t, opt.Settings)), title)
	if t.Highlighted() {
		line += " :star:"
	}
	if d := render.TaskDetails(t, opt.Settings); d != "" {
		line += " " + d
	}
	buf.WriteString(line + "\n")
	for _, ch := range t.Children() {
		renderTaskLine(buf, ch, depth+1, opt)
	}
}

// priorityMark is an emoji shortcode; goldmark-emoji turns it into a glyph in HTML output.
func priorityMark(p model.Priority) string {
	switch p {
	case model.PriorityImportant:
		return ":exclamation: "
	case model.PriorityQuestionable:
		return ":grey_question: "
	default:
		return ""
	}
}

func escapeInline(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")
	return r.Replace(strings.TrimSpace(s))
}

// RenderTaskMarkdown renders one task page: meta, description and direct subtasks.
func RenderTaskMarkdown(m *model.Model, id string, opt RenderOptions) (string, error) {
	t, ok := m.Find(strings.TrimSpace(id))
	if !ok {
		return "", &model.NotFoundError{Kind: "task", ID: id}
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title()))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID())
	if p := t.Parent(); p != nil {
		writeLn("- Parent: " + p.Title() + " (" + p.ID() + ")")
	}
	writeLn("- Priority: " + render.EffectivePriority(t, opt.Settings).Label())
	if t.Completed() {
		writeLn("- Completed: true")
	}
	if t.Highlighted() {
		writeLn("- Highlighted: " + string(t.HighlightingType()))
	}
	if est := t.EstimatedTime(); est != 0 {
		writeLn("- Estimated: " + render.FormatDuration(est))
	}
	if act := t.ActualTime(); act != 0 && (opt.Settings == nil || opt.Settings.EnableActualTime()) {
		writeLn("- Actual: " + render.FormatDuration(act))
	}
	if t.Len() > 0 {
		fmt.Fprintf(&buf, "- Progress: %d%%\n", t.CompletionRatio())
	}
	writeLn("- Created: " + t.CreationTime().UTC().Format(time.RFC3339))

	if desc := strings.TrimSpace(t.Description()); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}

	if t.Len() > 0 {
		writeLn("")
		writeLn("## Subtasks")
		writeLn("")
		for _, ch := range t.Children() {
			box := " "
			if ch.Completed() {
				box = "x"
			}
			writeLn(fmt.Sprintf("- [%s] [%s](%s.md)", box, escapeInline(ch.Title()), ch.ID()))
		}
	}
	return buf.String(), nil
}
