package group

import "tasktree/internal/model"

// Filter accepts or rejects a task.
type Filter func(*model.Task) bool

// ByPriority accepts tasks with exactly priority p.
func ByPriority(p model.Priority) Filter {
	p = p.OrDefault()
	return func(t *model.Task) bool { return t.Priority() == p }
}

// Incomplete accepts tasks that are not (derived) completed.
func Incomplete() Filter {
	return func(t *model.Task) bool { return !t.Completed() }
}

// And accepts what every non-nil filter accepts. It returns nil when none are given.
func And(filters ...Filter) Filter {
	var fs []Filter
	for _, f := range filters {
		if f != nil {
			fs = append(fs, f)
		}
	}
	switch len(fs) {
	case 0:
		return nil
	case 1:
		return fs[0]
	}
	return func(t *model.Task) bool {
		for _, f := range fs {
			if !f(t) {
				return false
			}
		}
		return true
	}
}

const AllTasksTitle = "All Tasks"

// AllTasks is the ungrouped display root: the model roots, optionally filtered.
func AllTasks(src Source, filter Filter) *View {
	return NewView(AllTasksTitle, src, filter)
}

// GroupByPriority builds the grouped display root: one view per priority, highest first.
// It is display-only and never mutates the model.
func GroupByPriority(src Source, filter Filter) *Static {
	root := NewStatic(AllTasksTitle)
	for _, p := range model.Priorities() {
		v := NewView(p.Label(), src, And(ByPriority(p), filter))
		v.priority = p
		root.Add(v)
	}
	return root
}

// PriorityOf reports which priority a group built by GroupByPriority stands for.
func PriorityOf(g Group) (model.Priority, bool) {
	v, ok := g.(*View)
	if !ok || v.priority == "" {
		return "", false
	}
	return v.priority, true
}
