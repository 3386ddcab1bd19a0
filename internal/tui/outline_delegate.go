package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"tasktree/internal/render"
	"tasktree/internal/settings"
)

type outlineItemDelegate struct {
	settings *settings.Settings
	glyphs   render.Glyphs
	styles   render.Styles
	// plain renders without colors; the focused row is drawn on a solid background and
	// inner color resets would punch holes into it.
	plain    render.Styles
	selected lipgloss.Style
}

func newOutlineItemDelegate(s *settings.Settings, g render.Glyphs) outlineItemDelegate {
	plain := lipgloss.NewRenderer(io.Discard)
	plain.SetColorProfile(termenv.Ascii)
	return outlineItemDelegate{
		settings: s,
		glyphs:   g,
		styles:   render.NewStyles(nil),
		plain:    render.NewStyles(plain),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d outlineItemDelegate) Height() int  { return 1 }
func (d outlineItemDelegate) Spacing() int { return 0 }
func (d outlineItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d outlineItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(rowItem)
	if !ok {
		fmt.Fprint(w, d.renderRow(contentW, lipgloss.NewStyle(), fmt.Sprint(item)))
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, d.renderRow(contentW, d.selected, d.lead(it)+render.Line(it.row.Node, d.settings, d.glyphs, d.plain)))
		return
	}
	fmt.Fprint(w, d.renderRow(contentW, lipgloss.NewStyle(), d.lead(it)+render.Line(it.row.Node, d.settings, d.glyphs, d.styles)))
}

// lead is the indentation plus the twisty column.
func (d outlineItemDelegate) lead(it rowItem) string {
	twisty := " "
	if it.row.HasChildren {
		if it.row.Collapsed {
			twisty = glyphTwistyCollapsed(d.glyphs)
		} else {
			twisty = glyphTwistyExpanded(d.glyphs)
		}
	}
	return strings.Repeat("  ", it.row.Depth) + twisty + " "
}

func (d outlineItemDelegate) renderRow(width int, style lipgloss.Style, line string) string {
	plainW := xansi.StringWidth(line)
	if plainW < width {
		line += strings.Repeat(" ", width-plainW)
	} else if plainW > width {
		line = xansi.Truncate(line, width, "…")
	}
	return style.Render(line)
}
