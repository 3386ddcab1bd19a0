package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/publish"
	"tasktree/internal/render"
)

const helpLine = "a add  A subtask  e edit  x done  s timer  * star  p priority  J/K move  d delete  g group  c hide done  tab details  q quit"

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	body := m.listView()
	if m.showDetail {
		left, right := splitWidths(m.width)
		if right > 0 {
			h := max(m.height-2, 1)
			divider := styleMuted().Render(strings.TrimRight(strings.Repeat("│\n", h), "\n"))
			body = lipgloss.JoinHorizontal(lipgloss.Top,
				normalizePane(body, left, h),
				divider,
				normalizePane(m.detailView(right), right, h),
			)
		}
	}

	if box := m.modalView(); box != "" {
		body = lipgloss.Place(m.width, max(m.height-2, 1), lipgloss.Center, lipgloss.Center, box)
	}
	return strings.Join([]string{m.headerView(), body, m.footerView()}, "\n")
}

func (m appModel) listView() string {
	if len(m.list.Items()) == 0 {
		msg := "No tasks yet. Press a to add one."
		if m.hideCompleted && m.tasks.Len() > 0 {
			msg = "Every task is completed. Press c to show them."
		}
		return styleMuted().Render(msg)
	}
	return m.list.View()
}

func (m appModel) headerView() string {
	total, done := 0, 0
	m.tasks.Walk(func(t *model.Task, _ int) bool {
		total++
		if t.Completed() {
			done++
		}
		return true
	})
	parts := []string{"tasktree", fmt.Sprintf("%d tasks, %d completed", total, done)}
	if m.proj.Grouped() {
		parts = append(parts, "grouped by priority")
	}
	if m.hideCompleted {
		parts = append(parts, "hiding completed")
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(parts[0])
	return title + styleMuted().Render("  "+strings.Join(parts[1:], " · "))
}

func (m appModel) footerView() string {
	if m.flash != "" {
		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if m.flashErr {
			st = lipgloss.NewStyle().Foreground(colorFlashError).Bold(true)
		}
		return st.Render(m.flash)
	}
	if t := m.selectedTask(); t != nil && t.Len() > 0 {
		return styleMuted().Render(strings.ReplaceAll(render.Tooltip(t), "\n", ": "))
	}
	return styleMuted().Render(helpLine)
}

func (m appModel) detailView(width int) string {
	row, ok := m.selectedRow()
	if !ok {
		return ""
	}
	if t := row.Task(); t != nil {
		md, err := publish.RenderTaskMarkdown(m.tasks, t.ID(), publish.RenderOptions{
			IncludeCompleted: true,
			Settings:         m.settings,
		})
		if err != nil {
			return err.Error()
		}
		return renderMarkdown(md, width-1)
	}
	if g, ok := row.Node.(group.Group); ok {
		rule := styleMuted().Render(strings.Repeat(glyphHRule(m.glyphs), max(width-1, 1)))
		return lipgloss.NewStyle().Bold(true).Render(g.Title()) + "\n" + rule + "\n" + render.GroupDetails(g)
	}
	return ""
}

func (m appModel) modalView() string {
	switch m.modal {
	case modalAddTask:
		title := "Add task"
		if m.addParent != nil {
			title = "Add subtask to " + m.addParent.Title()
		}
		return renderInputModal(m.width, title, "Title", m.input.View(), "enter: add   esc: cancel")
	case modalEditTitle:
		return renderInputModal(m.width, "Edit title", "Title", m.input.View(), "enter: save   esc: cancel")
	case modalActualTime:
		title := "Actual time for " + m.modalFor.Title()
		hint := fmt.Sprintf("recorded: %s   enter: complete   esc: cancel", render.FormatDuration(m.modalFor.StoredActualTime()))
		return renderInputModal(m.width, title, "Actual", m.input.View(), hint)
	case modalConfirmDelete:
		t := m.modalFor
		body := fmt.Sprintf("Delete %q", t.Title())
		if n := t.Len(); n > 0 {
			body += fmt.Sprintf(" and its %d subtasks", n)
		}
		return renderConfirmModal(m.width, "Delete task", body+"?", "Delete", "Cancel")
	}
	return ""
}
