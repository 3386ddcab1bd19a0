// Package group provides read-only projections over the task forest used for display:
// static containers of groups and filtered views bound to the model or to a task.
package group

import (
	"fmt"

	"tasktree/internal/model"
)

// Node is anything shown in the display tree: a *model.Task or a Group.
type Node interface {
	Title() string
}

// Group is a display container with indexed children.
type Group interface {
	Node
	Len() int
	Get(index int) (Node, error)
}

// Source is what a View reads through: *model.Model (roots) or *model.Task (children).
type Source interface {
	Len() int
	At(index int) (*model.Task, error)
}

// Static holds an explicit list of child groups. It is never bound to the model.
type Static struct {
	title  string
	groups []Group
}

func NewStatic(title string, groups ...Group) *Static {
	return &Static{title: title, groups: groups}
}

func (s *Static) Title() string { return s.title }

func (s *Static) Add(g Group) {
	if g != nil {
		s.groups = append(s.groups, g)
	}
}

func (s *Static) Len() int { return len(s.groups) }

func (s *Static) Get(index int) (Node, error) {
	if index < 0 || index >= len(s.groups) {
		return nil, fmt.Errorf("group %d of %d: %w", index, len(s.groups), model.ErrIndexOutOfRange)
	}
	return s.groups[index], nil
}

// View re-indexes a Source through an optional filter. Nothing is cached; every call walks
// the source's direct children.
type View struct {
	title  string
	src    Source
	filter Filter

	// priority is set on the per-priority views of GroupByPriority.
	priority model.Priority
}

func NewView(title string, src Source, filter Filter) *View {
	return &View{title: title, src: src, filter: filter}
}

func (v *View) Title() string { return v.title }

// Filter returns the view's predicate, or nil when it accepts everything.
func (v *View) Filter() Filter { return v.filter }

func (v *View) Len() int {
	if v.filter == nil {
		return v.src.Len()
	}
	n := 0
	for i := 0; i < v.src.Len(); i++ {
		if t, err := v.src.At(i); err == nil && v.filter(t) {
			n++
		}
	}
	return n
}

func (v *View) Get(index int) (Node, error) {
	t, err := v.Task(index)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Task returns the index-th accepted task, in source order.
func (v *View) Task(index int) (*model.Task, error) {
	if index < 0 {
		return nil, fmt.Errorf("view %q index %d: %w", v.title, index, model.ErrIndexOutOfRange)
	}
	if v.filter == nil {
		return v.src.At(index)
	}
	remaining := index
	for i := 0; i < v.src.Len(); i++ {
		t, err := v.src.At(i)
		if err != nil || !v.filter(t) {
			continue
		}
		if remaining == 0 {
			return t, nil
		}
		remaining--
	}
	return nil, fmt.Errorf("view %q index %d of %d: %w", v.title, index, index-remaining, model.ErrIndexOutOfRange)
}

// Tasks returns the accepted tasks in source order.
func (v *View) Tasks() []*model.Task {
	var out []*model.Task
	for i := 0; i < v.src.Len(); i++ {
		t, err := v.src.At(i)
		if err != nil {
			continue
		}
		if v.filter == nil || v.filter(t) {
			out = append(out, t)
		}
	}
	return out
}
