package model

import "fmt"

// ChangeEvent describes one mutation. Index is the position of Task within Parent's children
// (or within the model roots when Parent is nil) at the time the event fires.
type ChangeEvent struct {
	Parent *Task
	Task   *Task
	Index  int
}

func (e ChangeEvent) String() string {
	parent := "<root>"
	if e.Parent != nil {
		parent = e.Parent.id
	}
	return fmt.Sprintf("%s@%s[%d]", e.Task.id, parent, e.Index)
}

// EventKind names the Listener method an event was delivered to.
type EventKind string

const (
	EventAdded     EventKind = "added"
	EventPreDelete EventKind = "pre-delete"
	EventDeleted   EventKind = "deleted"
	EventPreChange EventKind = "pre-change"
	EventChanged   EventKind = "changed"
)

// Listener observes model mutations. "Pre" events fire before the mutation so observers can
// snapshot old state; the paired event fires right after.
//
// Listeners are compared with == on removal, so implementations should be pointer types.
type Listener interface {
	TaskAdded(ChangeEvent)
	TaskPreDelete(ChangeEvent)
	TaskDeleted(ChangeEvent)
	TaskPreChange(ChangeEvent)
	TaskChanged(ChangeEvent)
}

// ListenerFuncs adapts optional functions to Listener. Use a pointer.
type ListenerFuncs struct {
	Added     func(ChangeEvent)
	PreDelete func(ChangeEvent)
	Deleted   func(ChangeEvent)
	PreChange func(ChangeEvent)
	Changed   func(ChangeEvent)
}

func (f *ListenerFuncs) TaskAdded(e ChangeEvent) {
	if f.Added != nil {
		f.Added(e)
	}
}

func (f *ListenerFuncs) TaskPreDelete(e ChangeEvent) {
	if f.PreDelete != nil {
		f.PreDelete(e)
	}
}

func (f *ListenerFuncs) TaskDeleted(e ChangeEvent) {
	if f.Deleted != nil {
		f.Deleted(e)
	}
}

func (f *ListenerFuncs) TaskPreChange(e ChangeEvent) {
	if f.PreChange != nil {
		f.PreChange(e)
	}
}

func (f *ListenerFuncs) TaskChanged(e ChangeEvent) {
	if f.Changed != nil {
		f.Changed(e)
	}
}

// Dispatch routes e to the Listener method named by kind.
func Dispatch(l Listener, kind EventKind, e ChangeEvent) {
	switch kind {
	case EventAdded:
		l.TaskAdded(e)
	case EventPreDelete:
		l.TaskPreDelete(e)
	case EventDeleted:
		l.TaskDeleted(e)
	case EventPreChange:
		l.TaskPreChange(e)
	case EventChanged:
		l.TaskChanged(e)
	}
}

// KindFunc adapts a single function receiving every event together with its kind.
func KindFunc(fn func(EventKind, ChangeEvent)) *ListenerFuncs {
	return &ListenerFuncs{
		Added:     func(e ChangeEvent) { fn(EventAdded, e) },
		PreDelete: func(e ChangeEvent) { fn(EventPreDelete, e) },
		Deleted:   func(e ChangeEvent) { fn(EventDeleted, e) },
		PreChange: func(e ChangeEvent) { fn(EventPreChange, e) },
		Changed:   func(e ChangeEvent) { fn(EventChanged, e) },
	}
}
