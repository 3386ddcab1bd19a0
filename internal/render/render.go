// Package render turns tasks and groups into the short text shown next to their titles.
package render

import (
	"fmt"
	"strings"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/settings"
)

// FormatDuration renders seconds as "<h>h<m>m", omitting the hour part when it is zero.
// Leftover seconds are dropped.
func FormatDuration(seconds int64) string {
	minutes := seconds / 60
	hours := minutes / 60
	minutes %= 60
	if hours != 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// TaskDetails is the parenthesised summary after a task title. It is empty for a leaf with
// nothing to report.
func TaskDetails(t *model.Task, s *settings.Settings) string {
	estimated, actual := t.EstimatedTime(), t.ActualTime()
	actualOn := s == nil || s.EnableActualTime()

	if t.Len() > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "(%d Tasks, %d%% Completed", t.Len(), t.CompletionRatio())
		if estimated != 0 {
			b.WriteString(", Estimated: " + FormatDuration(estimated))
		}
		if actualOn && actual != 0 {
			b.WriteString(", Actual: " + FormatDuration(actual))
		}
		b.WriteString(")")
		return b.String()
	}

	if !actualOn {
		if estimated == 0 {
			return ""
		}
		return "(" + FormatDuration(estimated) + ")"
	}
	var parts []string
	if estimated != 0 {
		parts = append(parts, "Estimated: "+FormatDuration(estimated))
	}
	if actual != 0 {
		parts = append(parts, "Actual: "+FormatDuration(actual))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// GroupDetails summarises a group's direct members.
func GroupDetails(g group.Group) string {
	total, done := 0, 0
	for i := 0; i < g.Len(); i++ {
		n, err := g.Get(i)
		if err != nil {
			continue
		}
		total++
		if t, ok := n.(*model.Task); ok && t.Completed() {
			done++
		}
	}
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	return fmt.Sprintf("(%d Tasks, %d%% Completed)", total, pct)
}

// Tooltip describes a parent's direct children. It is empty for leaves.
func Tooltip(t *model.Task) string {
	n := t.Len()
	if n == 0 {
		return ""
	}
	done := 0
	for _, ch := range t.Children() {
		if ch.Completed() {
			done++
		}
	}
	return fmt.Sprintf("%s\n%d Tasks: %d completed, %d incomplete", t.Title(), n, done, n-done)
}

// EffectivePriority is the priority a task is displayed with. With propagation enabled a parent
// shows the highest priority found below it, or among its direct children only.
func EffectivePriority(t *model.Task, s *settings.Settings) model.Priority {
	if s == nil || !s.PropagatePriority() {
		return t.Priority()
	}
	return highestPriority(t, s.PriorityPropagatedOneLevelOnly())
}

func highestPriority(t *model.Task, firstLevel bool) model.Priority {
	p := t.Priority()
	for _, ch := range t.Children() {
		if firstLevel {
			p = model.MaxPriority(p, ch.Priority())
		} else {
			p = model.MaxPriority(p, highestPriority(ch, false))
		}
	}
	return p
}
