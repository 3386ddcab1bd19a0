package model

import (
	"fmt"
	"time"
)

// TimeTracker is the elapsed-time collaborator a running task is registered with.
type TimeTracker interface {
	StartTracking(t *Task)
	StopTracking(t *Task)
}

// Task is one node of the task forest.
//
// Estimated/actual time and the completed flag are stored per task but only observable
// on leaves: a task with children reports values aggregated from its subtree.
// Structural changes go through Model so listeners are notified.
type Task struct {
	id          string
	title       string
	description string
	priority    Priority

	estimatedTime int64
	actualTime    int64
	creationTime  time.Time

	completed        bool
	highlighted      bool
	highlightingType HighlightingType

	running bool
	tracker TimeTracker

	// parent is a back-reference only; ownership lives in the parent's children
	// slice or in Model.roots.
	parent   *Task
	children []*Task
}

// NewTask returns a detached task with default priority and a fresh ID.
func NewTask(title, description string) *Task {
	return &Task{
		id:           NewID(),
		title:        title,
		description:  description,
		priority:     PriorityNormal,
		creationTime: time.Now(),
	}
}

func (t *Task) ID() string          { return t.id }
func (t *Task) Title() string       { return t.title }
func (t *Task) Description() string { return t.description }

func (t *Task) Priority() Priority {
	return t.priority.OrDefault()
}

func (t *Task) CreationTime() time.Time { return t.creationTime }

func (t *Task) Highlighted() bool { return t.highlighted }

func (t *Task) HighlightingType() HighlightingType {
	return t.highlightingType.OrDefault()
}

func (t *Task) Running() bool { return t.running }

// Parent returns the owning task, or nil for a root task.
func (t *Task) Parent() *Task { return t.parent }

// EstimatedTime is the stored value for a leaf, else the sum over children.
func (t *Task) EstimatedTime() int64 {
	if len(t.children) == 0 {
		return t.estimatedTime
	}
	var sum int64
	for _, ch := range t.children {
		sum += ch.EstimatedTime()
	}
	return sum
}

// ActualTime is the stored value for a leaf, else the sum over children.
func (t *Task) ActualTime() int64 {
	if len(t.children) == 0 {
		return t.actualTime
	}
	var sum int64
	for _, ch := range t.children {
		sum += ch.ActualTime()
	}
	return sum
}

// StoredEstimatedTime and StoredActualTime return the raw per-task values, used by persistence.
func (t *Task) StoredEstimatedTime() int64 { return t.estimatedTime }
func (t *Task) StoredActualTime() int64    { return t.actualTime }
func (t *Task) StoredCompleted() bool      { return t.completed }

// Completed is the stored flag for a leaf; a parent is completed iff all children are.
func (t *Task) Completed() bool {
	if len(t.children) == 0 {
		return t.completed
	}
	for _, ch := range t.children {
		if !ch.Completed() {
			return false
		}
	}
	return true
}

// CompletionRatio is 0 or 100 for a leaf, else the truncated mean of the children's ratios.
func (t *Task) CompletionRatio() int {
	if len(t.children) == 0 {
		if t.completed {
			return 100
		}
		return 0
	}
	sum := 0
	for _, ch := range t.children {
		sum += ch.CompletionRatio()
	}
	return sum / len(t.children)
}

// Len returns the number of direct children.
func (t *Task) Len() int { return len(t.children) }

func (t *Task) At(index int) (*Task, error) {
	if index < 0 || index >= len(t.children) {
		return nil, fmt.Errorf("subtask %d of %d: %w", index, len(t.children), ErrIndexOutOfRange)
	}
	return t.children[index], nil
}

// Children returns a copy of the direct children in display order.
func (t *Task) Children() []*Task {
	out := make([]*Task, len(t.children))
	copy(out, t.children)
	return out
}

// IndexOf returns the position of sub among the direct children, or -1.
func (t *Task) IndexOf(sub *Task) int {
	for i, ch := range t.children {
		if ch == sub {
			return i
		}
	}
	return -1
}

// IsAncestorOf reports whether t is a strict ancestor of other.
func (t *Task) IsAncestorOf(other *Task) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

// Start marks the task running and registers it with tr. Only incomplete leaves run: a
// parent's actual time is the sum over its subtree.
func (t *Task) Start(tr TimeTracker) error {
	if len(t.children) > 0 {
		return fmt.Errorf("start %s: task has subtasks: %w", t.id, ErrInvalidArgument)
	}
	if t.Completed() {
		return fmt.Errorf("start %s: %w", t.id, ErrCompleted)
	}
	if t.running {
		return nil
	}
	t.running = true
	t.tracker = tr
	if tr != nil {
		tr.StartTracking(t)
	}
	return nil
}

// Stop clears running and deregisters from the tracker the task was started with.
func (t *Task) Stop() {
	t.running = false
	if t.tracker != nil {
		t.tracker.StopTracking(t)
		t.tracker = nil
	}
}

func (t *Task) String() string { return t.title }

func (t *Task) setCompleted(completed bool) {
	if len(t.children) == 0 {
		t.completed = completed
	}
	if completed {
		t.Stop()
	}
}

func (t *Task) add(sub *Task) {
	t.children = append(t.children, sub)
	sub.parent = t
}

func (t *Task) insert(index int, sub *Task) {
	t.children = insertAt(t.children, index, sub)
	sub.parent = t
}

func (t *Task) remove(sub *Task) {
	if i := t.IndexOf(sub); i >= 0 {
		t.children = removeAt(t.children, i)
		sub.parent = nil
	}
}

func insertAt(xs []*Task, index int, t *Task) []*Task {
	if index < 0 || index >= len(xs) {
		return append(xs, t)
	}
	xs = append(xs, nil)
	copy(xs[index+1:], xs[index:])
	xs[index] = t
	return xs
}

func removeAt(xs []*Task, index int) []*Task {
	copy(xs[index:], xs[index+1:])
	xs[len(xs)-1] = nil
	return xs[:len(xs)-1]
}
