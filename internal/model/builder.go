package model

import (
	"fmt"
	"time"
)

// Builder assembles a detached Task field by field, e.g. when restoring from storage.
// Enum fields are validated in Build.
type Builder struct {
	t Task
}

func NewBuilder() *Builder {
	return &Builder{t: Task{
		priority:     PriorityNormal,
		creationTime: time.Now(),
	}}
}

func (b *Builder) ID(id string) *Builder                 { b.t.id = id; return b }
func (b *Builder) Title(title string) *Builder           { b.t.title = title; return b }
func (b *Builder) Description(desc string) *Builder      { b.t.description = desc; return b }
func (b *Builder) Priority(p Priority) *Builder          { b.t.priority = p; return b }
func (b *Builder) EstimatedTime(sec int64) *Builder      { b.t.estimatedTime = sec; return b }
func (b *Builder) ActualTime(sec int64) *Builder         { b.t.actualTime = sec; return b }
func (b *Builder) CreationTime(ts time.Time) *Builder    { b.t.creationTime = ts; return b }
func (b *Builder) Completed(completed bool) *Builder     { b.t.completed = completed; return b }
func (b *Builder) Highlighted(highlighted bool) *Builder { b.t.highlighted = highlighted; return b }

func (b *Builder) HighlightingType(h HighlightingType) *Builder {
	b.t.highlightingType = h
	return b
}

func (b *Builder) Build() (*Task, error) {
	if !b.t.priority.Valid() {
		return nil, fmt.Errorf("priority %q: %w", b.t.priority, ErrUnsupportedValue)
	}
	if !b.t.highlightingType.Valid() {
		return nil, fmt.Errorf("highlighting type %q: %w", b.t.highlightingType, ErrUnsupportedValue)
	}
	if b.t.estimatedTime < 0 || b.t.actualTime < 0 {
		return nil, fmt.Errorf("negative time: %w", ErrInvalidArgument)
	}
	t := b.t
	if t.id == "" {
		t.id = NewID()
	}
	t.priority = t.priority.OrDefault()
	t.highlightingType = t.highlightingType.OrDefault()
	return &t, nil
}
