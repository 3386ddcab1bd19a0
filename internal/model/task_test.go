package model

import (
	"errors"
	"testing"
)

type fakeTracker struct {
	started []*Task
	stopped []*Task
}

func (f *fakeTracker) StartTracking(t *Task) { f.started = append(f.started, t) }
func (f *fakeTracker) StopTracking(t *Task)  { f.stopped = append(f.stopped, t) }

func mustTask(t *testing.T, b *Builder) *Task {
	t.Helper()
	task, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return task
}

func TestTask_LeafReportsStoredValues(t *testing.T) {
	task := mustTask(t, NewBuilder().Title("leaf").EstimatedTime(60).ActualTime(12))
	if got := task.EstimatedTime(); got != 60 {
		t.Fatalf("expected estimated 60, got %d", got)
	}
	if got := task.ActualTime(); got != 12 {
		t.Fatalf("expected actual 12, got %d", got)
	}
	if task.Completed() {
		t.Fatalf("expected incomplete leaf")
	}
	if got := task.CompletionRatio(); got != 0 {
		t.Fatalf("expected ratio 0, got %d", got)
	}

	done := mustTask(t, NewBuilder().Title("done").Completed(true))
	if !done.Completed() || done.CompletionRatio() != 100 {
		t.Fatalf("expected completed leaf with ratio 100, got %v/%d", done.Completed(), done.CompletionRatio())
	}
}

func TestTask_AggregatesOverChildrenRecursively(t *testing.T) {
	m := New()
	a := mustTask(t, NewBuilder().Title("A").EstimatedTime(999).ActualTime(999))
	if err := m.AddTask(nil, a); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	b, _ := m.AddNew(a, "B", "", PriorityNormal, 30)
	c, _ := m.AddNew(a, "C", "", PriorityNormal, 0)
	d, _ := m.AddNew(c, "D", "", PriorityNormal, 20)
	e, _ := m.AddNew(c, "E", "", PriorityNormal, 10)
	_ = m.UpdateActualTime(b, 5)
	_ = m.UpdateActualTime(d, 7)
	_ = m.UpdateActualTime(e, 1)

	if got := a.EstimatedTime(); got != 60 {
		t.Fatalf("expected A estimated 60 (stored value ignored), got %d", got)
	}
	if got := a.ActualTime(); got != 13 {
		t.Fatalf("expected A actual 13, got %d", got)
	}

	_ = m.CompleteTask(b)
	_ = m.CompleteTask(d)
	if got := c.CompletionRatio(); got != 50 {
		t.Fatalf("expected C ratio 50, got %d", got)
	}
	if got := a.CompletionRatio(); got != 75 {
		t.Fatalf("expected A ratio (100+50)/2=75, got %d", got)
	}
	if a.Completed() {
		t.Fatalf("expected A incomplete while E is open")
	}

	_ = m.CompleteTask(e)
	if !a.Completed() || a.CompletionRatio() != 100 {
		t.Fatalf("expected A completed at 100%%, got %v/%d", a.Completed(), a.CompletionRatio())
	}
}

func TestTask_CompletionRatioTruncates(t *testing.T) {
	m := New()
	p, _ := m.AddNew(nil, "P", "", PriorityNormal, 0)
	x, _ := m.AddNew(p, "x", "", PriorityNormal, 0)
	_, _ = m.AddNew(p, "y", "", PriorityNormal, 0)
	_, _ = m.AddNew(p, "z", "", PriorityNormal, 0)
	_ = m.CompleteTask(x)
	if got := p.CompletionRatio(); got != 33 {
		t.Fatalf("expected 100/3 truncated to 33, got %d", got)
	}
}

func TestTask_StartStopUsesTracker(t *testing.T) {
	tr := &fakeTracker{}
	task := NewTask("run", "")
	if err := task.Start(tr); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !task.Running() || len(tr.started) != 1 {
		t.Fatalf("expected running and registered, got running=%v started=%d", task.Running(), len(tr.started))
	}
	task.Stop()
	if task.Running() || len(tr.stopped) != 1 {
		t.Fatalf("expected stopped and deregistered, got running=%v stopped=%d", task.Running(), len(tr.stopped))
	}
}

func TestTask_StartRefusesCompleted(t *testing.T) {
	task := mustTask(t, NewBuilder().Title("done").Completed(true))
	if err := task.Start(&fakeTracker{}); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
}

func TestTask_AtOutOfRange(t *testing.T) {
	task := NewTask("empty", "")
	if _, err := task.At(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if got := task.IndexOf(NewTask("other", "")); got != -1 {
		t.Fatalf("expected -1 for non-child, got %d", got)
	}
}

func TestBuilder_RejectsUnknownEnums(t *testing.T) {
	if _, err := NewBuilder().Priority("urgent").Build(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue for priority, got %v", err)
	}
	if _, err := NewBuilder().HighlightingType("purple").Build(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue for highlighting, got %v", err)
	}
	task := mustTask(t, NewBuilder())
	if task.Priority() != PriorityNormal || task.HighlightingType() != HighlightRed {
		t.Fatalf("expected defaults normal/red, got %s/%s", task.Priority(), task.HighlightingType())
	}
	if !LooksLikeID(task.ID()) {
		t.Fatalf("expected generated id, got %q", task.ID())
	}
}

func TestPriority_OrderAndMax(t *testing.T) {
	if MaxPriority(PriorityNormal, PriorityImportant) != PriorityImportant {
		t.Fatalf("expected important > normal")
	}
	if MaxPriority(PriorityQuestionable, "") != PriorityNormal {
		t.Fatalf("expected empty priority to read as normal")
	}
	if MaxPriority(PriorityImportant, PriorityQuestionable) != PriorityImportant {
		t.Fatalf("expected important > questionable")
	}
	if _, err := ParsePriority("whenever"); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	if p, _ := ParsePriority(" Important "); p != PriorityImportant {
		t.Fatalf("expected important, got %q", p)
	}
	if HighlightGreen.Next() != HighlightRed {
		t.Fatalf("expected highlight cycle to wrap to red")
	}
}
