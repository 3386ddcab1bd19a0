package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func modalBodyWidth(width int) int {
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Width(bodyW).
		Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(header + "\n\n" + content)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string) string {
	btn := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	active := btn.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	controls := lipgloss.JoinHorizontal(lipgloss.Top, active.Render(confirmLabel), " ", btn.Render(cancelLabel))
	help := styleMuted().Width(modalBodyWidth(width)).Render("y/enter: confirm   n/esc: cancel")

	return renderModalBox(width, title, strings.Join([]string{body, "", controls, "", help}, "\n"))
}

// renderInputModal shows one labelled field: the label, then the text input filling the
// rest of the line.
func renderInputModal(width int, title, label, inputView, hint string) string {
	bodyW := modalBodyWidth(width)
	prompt := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(label + ":")
	fieldW := max(bodyW-lipgloss.Width(prompt)-1, 8)

	// The field is a single line; a pasted newline would break the box.
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	field := lipgloss.NewStyle().
		Background(colorInputBg).
		Width(fieldW).
		Render(xansi.Truncate(inputView, fieldW, ""))

	help := styleMuted().Width(bodyW).Render(hint)
	return renderModalBox(width, title, prompt+" "+field+"\n\n"+help)
}
