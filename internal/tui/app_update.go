package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/timer"
	"tasktree/internal/tree"
)

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeList()

	case tickMsg:
		if err := timer.Apply(m.tasks, timer.Tick(msg)); err != nil {
			m.log.Warn("apply tick", "err", err)
		}
		m.unsavedTicks++
		if m.unsavedTicks >= saveEveryTicks {
			m.persist()
		}

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}

	case tea.KeyMsg:
		if m.modal != modalNone {
			m, cmd = m.updateModal(msg)
		} else {
			m, cmd = m.updateKeys(msg)
		}
	}

	if m.sync.dirty {
		m.refreshRows()
	}
	return m, cmd
}

func (m *appModel) resizeList() {
	w := m.width
	if m.showDetail {
		w, _ = splitWidths(m.width)
	}
	// Header and footer take one line each.
	m.list.SetSize(w, max(m.height-2, 1))
}

func (m appModel) updateKeys(msg tea.KeyMsg) (appModel, tea.Cmd) {
	t := m.selectedTask()
	row, hasRow := m.selectedRow()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "enter", "l", "right":
		if hasRow && row.HasChildren {
			if row.Collapsed {
				delete(m.collapsed, tree.Key(row.Node))
			} else if msg.String() == "enter" {
				m.collapsed[tree.Key(row.Node)] = true
			}
			m.sync.dirty = true
		}
		return m, nil

	case "h", "left":
		if !hasRow {
			return m, nil
		}
		if row.HasChildren && !row.Collapsed {
			m.collapsed[tree.Key(row.Node)] = true
			m.sync.dirty = true
			return m, nil
		}
		if t != nil && t.Parent() != nil {
			if i := indexOfKey(m.list.Items(), t.Parent().ID()); i >= 0 {
				m.list.Select(i)
			}
		}
		return m, nil

	case "a":
		m.addParent, m.addPriority = nil, model.PriorityNormal
		if t != nil {
			m.addParent = t.Parent()
		} else if hasRow {
			if g, ok := row.Node.(group.Group); ok {
				if p, ok := group.PriorityOf(g); ok {
					m.addPriority = p
				}
			}
		}
		return m.openInput(modalAddTask, nil, "", "Title of the new task"), nil

	case "A":
		if t == nil {
			return m, nil
		}
		m.addParent, m.addPriority = t, model.PriorityNormal
		return m.openInput(modalAddTask, nil, "", "Title of the new subtask"), nil

	case "e":
		if t == nil {
			return m, nil
		}
		return m.openInput(modalEditTitle, t, t.Title(), "Title"), nil

	case "d", "delete":
		if t == nil {
			return m, nil
		}
		m.modal, m.modalFor = modalConfirmDelete, t
		return m, nil

	case "x", " ":
		if t == nil {
			return m, nil
		}
		if t.Completed() {
			return m.mutate(m.tasks.UncompleteTask(t))
		}
		if m.shouldAskActual(t) {
			return m.openInput(modalActualTime, t, "", "e.g. 1h30m, or minutes"), nil
		}
		return m.mutate(m.tasks.CompleteTask(t))

	case "s":
		if t == nil {
			return m, nil
		}
		if t.Running() {
			return m.mutate(m.tasks.StopTask(t))
		}
		if !m.settings.EnableActualTime() {
			return m.setFlash("Time tracking is off (enableActualTime)", true)
		}
		return m.mutate(m.tasks.StartTask(t))

	case "*":
		if t == nil {
			return m, nil
		}
		if !t.Highlighted() {
			return m.mutate(m.tasks.HighlightTask(t))
		}
		return m.mutate(m.tasks.SetTaskHighlightingType(t, t.HighlightingType().Next()))

	case "u":
		if t == nil || !t.Highlighted() {
			return m, nil
		}
		return m.mutate(m.tasks.UnhighlightTask(t))

	case "p":
		if t == nil {
			return m, nil
		}
		next := nextPriority(t.Priority())
		return m.mutate(m.tasks.UpdateTask(t, t.Parent(), t.Title(), t.Description(), next, t.StoredEstimatedTime()))

	case "K", "shift+up":
		if t == nil || !m.tasks.CanMoveUp(t) {
			return m, nil
		}
		return m.mutate(m.tasks.MoveUp(t))

	case "J", "shift+down":
		if t == nil || !m.tasks.CanMoveDown(t) {
			return m, nil
		}
		return m.mutate(m.tasks.MoveDown(t))

	case "g":
		m.proj.SetGrouped(!m.proj.Grouped())
		return m, nil

	case "c":
		m.hideCompleted = !m.hideCompleted
		m.proj.SetFilter(m.filter())
		return m, nil

	case "tab":
		m.showDetail = !m.showDetail
		m.resizeList()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) openInput(kind modalKind, t *model.Task, value, placeholder string) appModel {
	m.modal, m.modalFor = kind, t
	m.input.Reset()
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m appModel) closeModal() appModel {
	m.modal, m.modalFor, m.addParent = modalNone, nil, nil
	m.input.Blur()
	return m
}

func (m appModel) updateModal(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.modal == modalConfirmDelete {
		switch msg.String() {
		case "y", "enter":
			t := m.modalFor
			m = m.closeModal()
			return m.mutate(m.tasks.DeleteTask(t))
		case "n", "esc", "ctrl+g", "q":
			return m.closeModal(), nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "ctrl+g":
		return m.closeModal(), nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) submitInput() (appModel, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	kind, t, parent, prio := m.modal, m.modalFor, m.addParent, m.addPriority

	switch kind {
	case modalAddTask:
		if value == "" {
			return m.closeModal(), nil
		}
		m = m.closeModal()
		if parent != nil {
			delete(m.collapsed, parent.ID())
		}
		_, err := m.tasks.AddNew(parent, value, "", prio, 0)
		return m.mutate(err)

	case modalEditTitle:
		if value == "" {
			return m.setFlash("Title cannot be empty", true)
		}
		m = m.closeModal()
		return m.mutate(m.tasks.UpdateTask(t, t.Parent(), value, t.Description(), t.Priority(), t.StoredEstimatedTime()))

	case modalActualTime:
		sec, err := parseMinutesOrDuration(value)
		if err != nil {
			return m.setFlash(err.Error(), true)
		}
		m = m.closeModal()
		if value != "" {
			if err := m.tasks.UpdateActualTime(t, sec); err != nil {
				return m.mutate(err)
			}
		}
		return m.mutate(m.tasks.CompleteTask(t))
	}
	return m.closeModal(), nil
}

func (m appModel) shouldAskActual(t *model.Task) bool {
	s := m.settings
	return s.AskActualWhenCompleteTask() && s.EnableActualTime() && t.Len() == 0
}

// mutate reports err, or persists the model after a successful change.
func (m appModel) mutate(err error) (appModel, tea.Cmd) {
	if err != nil {
		m.log.Warn("mutation failed", "err", err)
		return m.setFlash(err.Error(), true)
	}
	m.persist()
	if m.saveErr != nil {
		return m.setFlash("save failed: "+m.saveErr.Error(), true)
	}
	return m, nil
}

func (m *appModel) persist() {
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m.saveErr = m.store.Save(context.WithoutCancel(ctx), m.tasks)
	if m.saveErr != nil {
		m.log.Error("save", "err", m.saveErr)
	}
	m.unsavedTicks = 0
}

func (m appModel) setFlash(text string, isErr bool) (appModel, tea.Cmd) {
	m.flashSeq++
	m.flash, m.flashErr = text, isErr
	return m, flashAfter(m.flashSeq)
}

func nextPriority(p model.Priority) model.Priority {
	ps := model.Priorities()
	for i, x := range ps {
		if x == p.OrDefault() {
			return ps[(i+1)%len(ps)]
		}
	}
	return model.PriorityNormal
}

// parseMinutesOrDuration accepts "" (keep), bare minutes, or a Go duration.
func parseMinutesOrDuration(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n * 60, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("not a duration: %q (try 1h30m or 45)", s)
	}
	return int64(d / time.Second), nil
}
