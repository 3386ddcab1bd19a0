// Package settings holds the user-facing flags read by rendering and completion logic.
// A Settings value is created by the host and passed explicitly to whoever needs it.
package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	EnableActualTime               = "enableActualTime"
	AskActualWhenCompleteTask      = "askActualWhenCompleteTask"
	EnableTasksScope               = "enableTasksScope"
	PropagatePriority              = "propagatePriority"
	PriorityPropagatedOneLevelOnly = "priorityPropagatedOneLevelOnly"
)

// Names lists every flag in display order.
func Names() []string {
	return []string{
		EnableActualTime,
		AskActualWhenCompleteTask,
		EnableTasksScope,
		PropagatePriority,
		PriorityPropagatedOneLevelOnly,
	}
}

// Values is the persisted form of the flags.
type Values struct {
	EnableActualTime               bool `json:"enableActualTime"`
	AskActualWhenCompleteTask      bool `json:"askActualWhenCompleteTask"`
	EnableTasksScope               bool `json:"enableTasksScope"`
	PropagatePriority              bool `json:"propagatePriority"`
	PriorityPropagatedOneLevelOnly bool `json:"priorityPropagatedOneLevelOnly"`
}

func Defaults() Values {
	return Values{EnableActualTime: true}
}

// Change describes one flag transition.
type Change struct {
	Name string
	Old  bool
	New  bool
}

type Settings struct {
	v         Values
	observers []*func(Change)
}

func New(v Values) *Settings {
	return &Settings{v: v}
}

func (s *Settings) Values() Values { return s.v }

func (s *Settings) EnableActualTime() bool          { return s.v.EnableActualTime }
func (s *Settings) AskActualWhenCompleteTask() bool { return s.v.AskActualWhenCompleteTask }
func (s *Settings) EnableTasksScope() bool          { return s.v.EnableTasksScope }
func (s *Settings) PropagatePriority() bool         { return s.v.PropagatePriority }

func (s *Settings) PriorityPropagatedOneLevelOnly() bool {
	return s.v.PriorityPropagatedOneLevelOnly
}

// Observe registers fn for every flag change and returns a function that removes it.
func (s *Settings) Observe(fn func(Change)) (remove func()) {
	p := &fn
	s.observers = append(s.observers, p)
	return func() {
		if i := slices.Index(s.observers, p); i >= 0 {
			s.observers = slices.Delete(s.observers, i, i+1)
		}
	}
}

// Get returns the flag with the given name.
func (s *Settings) Get(name string) (bool, error) {
	ptr, err := s.field(name)
	if err != nil {
		return false, err
	}
	return *ptr, nil
}

// Set updates a flag by name and notifies observers when the value changed.
func (s *Settings) Set(name string, value bool) error {
	ptr, err := s.field(name)
	if err != nil {
		return err
	}
	old := *ptr
	if old == value {
		return nil
	}
	*ptr = value
	ch := Change{Name: canonical(name), Old: old, New: value}
	for _, fn := range slices.Clone(s.observers) {
		(*fn)(ch)
	}
	return nil
}

// SetString parses value as a boolean ("true", "off", "1", ...) before setting it.
func (s *Settings) SetString(name, value string) error {
	b, err := parseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return s.Set(name, b)
}

func (s *Settings) field(name string) (*bool, error) {
	switch canonical(name) {
	case EnableActualTime:
		return &s.v.EnableActualTime, nil
	case AskActualWhenCompleteTask:
		return &s.v.AskActualWhenCompleteTask, nil
	case EnableTasksScope:
		return &s.v.EnableTasksScope, nil
	case PropagatePriority:
		return &s.v.PropagatePriority, nil
	case PriorityPropagatedOneLevelOnly:
		return &s.v.PriorityPropagatedOneLevelOnly, nil
	default:
		return nil, fmt.Errorf("unknown setting: %s", name)
	}
}

// canonical accepts names case-insensitively and with dashes ("propagate-priority").
func canonical(name string) string {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	for _, n := range Names() {
		if strings.ToLower(n) == key {
			return n
		}
	}
	// Legacy spelling from older settings files.
	if key == "onelevelonly" {
		return PriorityPropagatedOneLevelOnly
	}
	return name
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
