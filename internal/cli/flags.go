package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"tasktree/internal/model"
)

var (
	_ pflag.Value = (*priorityValue)(nil)
	_ pflag.Value = (*highlightValue)(nil)
	_ pflag.Value = (*durationValue)(nil)
)

type priorityValue struct{ p *model.Priority }

func newPriorityValue(p *model.Priority) *priorityValue { return &priorityValue{p: p} }

func (v *priorityValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *priorityValue) Set(s string) error {
	p, err := model.ParsePriority(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

func (v *priorityValue) Type() string { return "priority" }

type highlightValue struct{ h *model.HighlightingType }

func newHighlightValue(h *model.HighlightingType) *highlightValue { return &highlightValue{h: h} }

func (v *highlightValue) String() string {
	if v.h == nil {
		return ""
	}
	return string(*v.h)
}

func (v *highlightValue) Set(s string) error {
	h, err := model.ParseHighlightingType(s)
	if err != nil {
		return err
	}
	*v.h = h
	return nil
}

func (v *highlightValue) Type() string { return "color" }

// durationValue stores whole seconds. It accepts Go durations ("1h30m", "45m") and bare
// integers, which are minutes.
type durationValue struct{ sec *int64 }

func newDurationValue(sec *int64) *durationValue { return &durationValue{sec: sec} }

func (v *durationValue) String() string {
	if v.sec == nil || *v.sec == 0 {
		return ""
	}
	return (time.Duration(*v.sec) * time.Second).String()
}

func (v *durationValue) Set(s string) error {
	sec, err := parseDuration(s)
	if err != nil {
		return err
	}
	*v.sec = sec
	return nil
}

func (v *durationValue) Type() string { return "duration" }

func parseDuration(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("duration %q: %w", s, model.ErrInvalidArgument)
		}
		return n * 60, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: want e.g. 1h30m or minutes", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q: %w", s, model.ErrInvalidArgument)
	}
	return int64(d / time.Second), nil
}
