package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tasktree/internal/model"
	"tasktree/internal/timer"
	"tasktree/internal/tree"
)

// tickMsg carries a timer tick onto the program goroutine.
type tickMsg timer.Tick

type flashDoneMsg struct{ seq int }

const flashDuration = 3 * time.Second

func flashAfter(seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

type modalKind int

const (
	modalNone modalKind = iota
	modalAddTask
	modalEditTitle
	modalConfirmDelete
	modalActualTime
)

// saveEveryTicks bounds how much tracked time a crash can lose.
const saveEveryTicks = 30

// projectionSync collects projection updates between two Update calls. It is shared by
// pointer because the app model is passed around by value.
type projectionSync struct {
	dirty bool
	// focus is the task most recently inserted into the display tree; the selection follows it.
	focus *model.Task
}

func (s *projectionSync) observe(u tree.Update) {
	s.dirty = true
	if u.Kind != tree.Inserted {
		return
	}
	if t, ok := u.Node.(*model.Task); ok {
		s.focus = t
	}
}
