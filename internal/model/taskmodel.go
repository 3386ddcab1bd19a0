package model

import (
	"fmt"
	"slices"
)

// Model owns the forest of root tasks and is the only place that mutates structure.
// Every mutation notifies the registered listeners synchronously, on the caller's goroutine.
// Model is not safe for concurrent use; callers serialize access (one UI/command thread).
//
// Sub tasks are not reachable through Len/At; use Task.Len/Task.At.
type Model struct {
	roots     []*Task
	listeners []Listener
	tracker   TimeTracker
}

func New() *Model {
	return &Model{}
}

// SetTimeTracker sets the tracker used by StartTask.
func (m *Model) SetTimeTracker(tr TimeTracker) { m.tracker = tr }

// Len returns the number of root tasks.
func (m *Model) Len() int { return len(m.roots) }

func (m *Model) At(index int) (*Task, error) {
	if index < 0 || index >= len(m.roots) {
		return nil, fmt.Errorf("task %d of %d: %w", index, len(m.roots), ErrIndexOutOfRange)
	}
	return m.roots[index], nil
}

// Roots returns a copy of the root tasks in display order.
func (m *Model) Roots() []*Task {
	return slices.Clone(m.roots)
}

func (m *Model) AddChangeListener(l Listener) {
	if l == nil {
		return
	}
	m.listeners = append(m.listeners, l)
}

func (m *Model) RemoveChangeListener(l Listener) {
	for i, x := range m.listeners {
		if x == l {
			m.listeners = slices.Delete(m.listeners, i, i+1)
			return
		}
	}
}

// Contains reports whether t is reachable from the model roots.
func (m *Model) Contains(t *Task) bool {
	if t == nil {
		return false
	}
	cur := t
	for cur.parent != nil {
		if cur.parent.IndexOf(cur) < 0 {
			return false
		}
		cur = cur.parent
	}
	return m.rootIndex(cur) >= 0
}

// Walk visits every task in pre-order (roots, then each subtree) until fn returns false.
func (m *Model) Walk(fn func(t *Task, depth int) bool) {
	var walk func(t *Task, depth int) bool
	walk = func(t *Task, depth int) bool {
		if !fn(t, depth) {
			return false
		}
		for _, ch := range t.children {
			if !walk(ch, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range m.roots {
		if !walk(r, 0) {
			return
		}
	}
}

// Find returns the first task in pre-order with the given id.
func (m *Model) Find(id string) (*Task, bool) {
	var found *Task
	m.Walk(func(t *Task, _ int) bool {
		if t.id == id {
			found = t
			return false
		}
		return true
	})
	return found, found != nil
}

// AddTask appends a detached task to parent's children, or to the roots when parent is nil.
func (m *Model) AddTask(parent, task *Task) error {
	if task == nil {
		return ErrNilTask
	}
	if err := m.checkParent(parent); err != nil {
		return err
	}
	if task.parent != nil || m.rootIndex(task) >= 0 || task == parent {
		return fmt.Errorf("add %s: %w", task.id, ErrAttached)
	}
	idx := m.attach(parent, task, -1)
	m.fire(EventAdded, ChangeEvent{Parent: parent, Task: task, Index: idx})
	m.settleRunning(parent)
	return nil
}

// AddNew creates a task from the given fields and adds it under parent.
func (m *Model) AddNew(parent *Task, title, description string, priority Priority, estimated int64) (*Task, error) {
	t, err := NewBuilder().
		Title(title).
		Description(description).
		Priority(priority).
		EstimatedTime(estimated).
		Build()
	if err != nil {
		return nil, err
	}
	if err := m.AddTask(parent, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Restore attaches a detached task without notifying listeners (bulk load).
func (m *Model) Restore(parent, task *Task) error {
	if task == nil {
		return ErrNilTask
	}
	if err := m.checkParent(parent); err != nil {
		return err
	}
	if task.parent != nil || m.rootIndex(task) >= 0 || task == parent {
		return fmt.Errorf("restore %s: %w", task.id, ErrAttached)
	}
	m.attach(parent, task, -1)
	return nil
}

// UpdateTask edits the task's fields in place. When newParent differs from the current
// parent the task is relocated to the end of newParent's children.
func (m *Model) UpdateTask(task, newParent *Task, title, description string, priority Priority, estimated int64) error {
	parent, idx, err := m.locate(task)
	if err != nil {
		return err
	}
	if !priority.Valid() {
		return fmt.Errorf("priority %q: %w", priority, ErrUnsupportedValue)
	}
	if estimated < 0 {
		return fmt.Errorf("estimated time %d: %w", estimated, ErrInvalidArgument)
	}
	moving := newParent != parent
	if moving {
		if err := m.checkMoveTarget(task, newParent); err != nil {
			return err
		}
	}

	m.fire(EventPreChange, ChangeEvent{Parent: parent, Task: task, Index: idx})

	task.title = title
	task.description = description
	task.priority = priority.OrDefault()
	task.estimatedTime = estimated

	if moving {
		m.move(task, newParent, -1)
	}

	parent, idx = task.parent, m.indexIn(task.parent, task)
	m.fire(EventChanged, ChangeEvent{Parent: parent, Task: task, Index: idx})
	if moving {
		m.settleRunning(newParent)
	}
	return nil
}

// MoveTask detaches task and reinserts it under newParent (nil for roots) at index.
// index -1 appends; an index past the end of the destination is clamped to append.
func (m *Model) MoveTask(task, newParent *Task, index int) error {
	if _, _, err := m.locate(task); err != nil {
		return err
	}
	if index < -1 {
		return fmt.Errorf("move to %d: %w", index, ErrInvalidIndex)
	}
	if err := m.checkMoveTarget(task, newParent); err != nil {
		return err
	}
	m.move(task, newParent, index)
	m.settleRunning(newParent)
	return nil
}

// DeleteTask removes task (and its subtree) from the model.
func (m *Model) DeleteTask(task *Task) error {
	parent, idx, err := m.locate(task)
	if err != nil {
		return err
	}
	m.fire(EventPreDelete, ChangeEvent{Parent: parent, Task: task, Index: idx})
	m.detach(task)
	stopSubtree(task)
	m.fire(EventDeleted, ChangeEvent{Parent: parent, Task: task, Index: idx})
	return nil
}

// CompleteTask sets the stored completed flag. On a task with children the flag is
// derived from the subtree, so only tracking is stopped.
func (m *Model) CompleteTask(task *Task) error {
	if err := m.change(task, func() { task.setCompleted(true) }); err != nil {
		return err
	}
	m.settleRunning(task.parent)
	return nil
}

func (m *Model) UncompleteTask(task *Task) error {
	return m.change(task, func() { task.setCompleted(false) })
}

func (m *Model) HighlightTask(task *Task) error {
	return m.change(task, func() { task.highlighted = true })
}

func (m *Model) UnhighlightTask(task *Task) error {
	return m.change(task, func() { task.highlighted = false })
}

func (m *Model) SetTaskHighlightingType(task *Task, h HighlightingType) error {
	if !h.Valid() {
		return fmt.Errorf("highlighting type %q: %w", h, ErrUnsupportedValue)
	}
	return m.change(task, func() { task.highlightingType = h.OrDefault() })
}

func (m *Model) UpdateActualTime(task *Task, actual int64) error {
	if actual < 0 {
		return fmt.Errorf("actual time %d: %w", actual, ErrInvalidArgument)
	}
	return m.change(task, func() { task.actualTime = actual })
}

// StartTask starts tracking elapsed time for task with the model's tracker.
func (m *Model) StartTask(task *Task) error {
	if _, _, err := m.locate(task); err != nil {
		return err
	}
	if task.Len() > 0 {
		return fmt.Errorf("start %s: task has subtasks: %w", task.id, ErrInvalidArgument)
	}
	if task.Completed() {
		return fmt.Errorf("start %s: %w", task.id, ErrCompleted)
	}
	if task.running {
		return nil
	}
	return m.change(task, func() { _ = task.Start(m.tracker) })
}

func (m *Model) StopTask(task *Task) error {
	if _, _, err := m.locate(task); err != nil {
		return err
	}
	if !task.running {
		return nil
	}
	return m.change(task, task.Stop)
}

// CanMoveUp reports whether task has a previous sibling.
func (m *Model) CanMoveUp(task *Task) bool {
	_, idx, err := m.locate(task)
	return err == nil && idx > 0
}

// CanMoveDown reports whether task has a next sibling.
func (m *Model) CanMoveDown(task *Task) bool {
	parent, idx, err := m.locate(task)
	return err == nil && idx < len(m.siblings(parent))-1
}

// MoveUp swaps task with its previous sibling. It is a no-op, firing nothing, for a first child.
func (m *Model) MoveUp(task *Task) error {
	parent, idx, err := m.locate(task)
	if err != nil {
		return err
	}
	if idx == 0 {
		return nil
	}
	m.shift(parent, task, idx, idx-1)
	return nil
}

// MoveDown swaps task with its next sibling. It is a no-op, firing nothing, for a last child.
func (m *Model) MoveDown(task *Task) error {
	parent, idx, err := m.locate(task)
	if err != nil {
		return err
	}
	if idx >= len(m.siblings(parent))-1 {
		return nil
	}
	m.shift(parent, task, idx, idx+1)
	return nil
}

func (m *Model) shift(parent, task *Task, from, to int) {
	m.fire(EventPreDelete, ChangeEvent{Parent: parent, Task: task, Index: from})
	m.detach(task)
	m.fire(EventDeleted, ChangeEvent{Parent: parent, Task: task, Index: from})
	idx := m.attach(parent, task, to)
	m.fire(EventAdded, ChangeEvent{Parent: parent, Task: task, Index: idx})
}

// move fires the removal with the pre-removal index, then the insertion with the final index.
func (m *Model) move(task, newParent *Task, index int) {
	oldParent, oldIdx := m.detach(task)
	m.fire(EventDeleted, ChangeEvent{Parent: oldParent, Task: task, Index: oldIdx})
	if n := len(m.siblings(newParent)); index > n {
		index = n
	}
	idx := m.attach(newParent, task, index)
	m.fire(EventAdded, ChangeEvent{Parent: newParent, Task: task, Index: idx})
}

func (m *Model) change(task *Task, fn func()) error {
	parent, idx, err := m.locate(task)
	if err != nil {
		return err
	}
	m.fire(EventPreChange, ChangeEvent{Parent: parent, Task: task, Index: idx})
	fn()
	m.fire(EventChanged, ChangeEvent{Parent: parent, Task: task, Index: idx})
	return nil
}

func (m *Model) fire(kind EventKind, e ChangeEvent) {
	// Snapshot so listeners may (de)register during dispatch.
	for _, l := range slices.Clone(m.listeners) {
		Dispatch(l, kind, e)
	}
}

func (m *Model) locate(task *Task) (*Task, int, error) {
	if task == nil {
		return nil, -1, ErrNilTask
	}
	if !m.Contains(task) {
		return nil, -1, notFound("task", task)
	}
	return task.parent, m.indexIn(task.parent, task), nil
}

func (m *Model) checkParent(parent *Task) error {
	if parent != nil && !m.Contains(parent) {
		return notFound("parent", parent)
	}
	return nil
}

func (m *Model) checkMoveTarget(task, newParent *Task) error {
	if err := m.checkParent(newParent); err != nil {
		return err
	}
	if newParent == task || (newParent != nil && task.IsAncestorOf(newParent)) {
		return fmt.Errorf("move %s: %w", task.id, ErrCycle)
	}
	return nil
}

func (m *Model) siblings(parent *Task) []*Task {
	if parent == nil {
		return m.roots
	}
	return parent.children
}

func (m *Model) indexIn(parent, task *Task) int {
	if parent == nil {
		return m.rootIndex(task)
	}
	return parent.IndexOf(task)
}

func (m *Model) rootIndex(task *Task) int {
	return slices.Index(m.roots, task)
}

func (m *Model) attach(parent, task *Task, index int) int {
	if parent != nil {
		parent.insert(index, task)
		return parent.IndexOf(task)
	}
	m.roots = insertAt(m.roots, index, task)
	task.parent = nil
	return m.rootIndex(task)
}

func (m *Model) detach(task *Task) (*Task, int) {
	parent := task.parent
	if parent != nil {
		idx := parent.IndexOf(task)
		parent.remove(task)
		return parent, idx
	}
	idx := m.rootIndex(task)
	if idx >= 0 {
		m.roots = removeAt(m.roots, idx)
	}
	return nil, idx
}

// settleRunning stops t and its ancestors where they run while having subtasks or being
// completed, firing pre-change/change for each. A running task is always an incomplete leaf.
func (m *Model) settleRunning(t *Task) {
	for a := t; a != nil; a = a.parent {
		if a.running && (len(a.children) > 0 || a.Completed()) {
			_ = m.change(a, a.Stop)
		}
	}
}

func stopSubtree(t *Task) {
	if t.running {
		t.Stop()
	}
	for _, ch := range t.children {
		stopSubtree(ch)
	}
}
