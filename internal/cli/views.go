package cli

import (
	"time"

	"tasktree/internal/model"
	"tasktree/internal/render"
	"tasktree/internal/settings"
)

// result is the {"data": ...} envelope every command writes. text is used with --format text.
type result struct {
	Data any `json:"data"`
	text string
}

func (r result) Text() string { return r.text }

func ok(data any, text string) result {
	return result{Data: data, text: text}
}

type taskView struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	ParentID          string     `json:"parentId,omitempty"`
	Priority          string     `json:"priority"`
	EffectivePriority string     `json:"effectivePriority"`
	EstimatedTime     int64      `json:"estimatedTime"`
	ActualTime        int64      `json:"actualTime"`
	Completed         bool       `json:"completed"`
	CompletionRatio   int        `json:"completionRatio"`
	Highlighted       bool       `json:"highlighted"`
	HighlightingType  string     `json:"highlightingType,omitempty"`
	Running           bool       `json:"running,omitempty"`
	CreationTime      time.Time  `json:"creationTime"`
	Details           string     `json:"details,omitempty"`
	Subtasks          []taskView `json:"subtasks,omitempty"`
}

// newTaskView snapshots t. depth limits how many levels of subtasks are included
// (0 = none, -1 = all).
func newTaskView(t *model.Task, s *settings.Settings, depth int) taskView {
	v := taskView{
		ID:                t.ID(),
		Title:             t.Title(),
		Description:       t.Description(),
		Priority:          string(t.Priority()),
		EffectivePriority: string(render.EffectivePriority(t, s)),
		EstimatedTime:     t.EstimatedTime(),
		ActualTime:        t.ActualTime(),
		Completed:         t.Completed(),
		CompletionRatio:   t.CompletionRatio(),
		Highlighted:       t.Highlighted(),
		Running:           t.Running(),
		CreationTime:      t.CreationTime().UTC(),
		Details:           render.TaskDetails(t, s),
	}
	if t.Highlighted() {
		v.HighlightingType = string(t.HighlightingType())
	}
	if p := t.Parent(); p != nil {
		v.ParentID = p.ID()
	}
	if depth != 0 {
		for _, c := range t.Children() {
			v.Subtasks = append(v.Subtasks, newTaskView(c, s, depth-1))
		}
	}
	return v
}

type groupView struct {
	Title   string     `json:"title"`
	Details string     `json:"details,omitempty"`
	Tasks   []taskView `json:"tasks"`
}
