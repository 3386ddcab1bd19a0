package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/settings"
)

// Glyphs are the markers drawn before a title. The ASCII set is for terminals without good
// Unicode fonts.
type Glyphs struct {
	Important    string
	Normal       string
	Questionable string
	Star         string
	Running      string
}

var (
	UnicodeGlyphs = Glyphs{Important: "‼", Normal: "•", Questionable: "?", Star: "★", Running: "▶"}
	ASCIIGlyphs   = Glyphs{Important: "!", Normal: "-", Questionable: "?", Star: "*", Running: ">"}
)

func (g Glyphs) Priority(p model.Priority) string {
	switch p.OrDefault() {
	case model.PriorityImportant:
		return g.Important
	case model.PriorityQuestionable:
		return g.Questionable
	default:
		return g.Normal
	}
}

// Styles holds the lipgloss styles for one line of the tree.
type Styles struct {
	Title     lipgloss.Style
	Running   lipgloss.Style
	Completed lipgloss.Style
	Details   lipgloss.Style
	Group     lipgloss.Style
	Priority  map[model.Priority]lipgloss.Style
	Highlight map[model.HighlightingType]lipgloss.Style
}

// NewStyles builds styles bound to r, so color detection follows r's output rather than
// stdout. A nil r uses the default renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	gray := lipgloss.AdaptiveColor{Light: "245", Dark: "243"}
	return Styles{
		Title:     r.NewStyle(),
		Running:   r.NewStyle().Bold(true),
		Completed: r.NewStyle().Strikethrough(true).Foreground(gray),
		Details:   r.NewStyle().Foreground(gray),
		Group:     r.NewStyle().Bold(true),
		Priority: map[model.Priority]lipgloss.Style{
			model.PriorityImportant:    r.NewStyle().Foreground(lipgloss.Color("203")),
			model.PriorityNormal:       r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"}),
			model.PriorityQuestionable: r.NewStyle().Foreground(gray),
		},
		Highlight: map[model.HighlightingType]lipgloss.Style{
			model.HighlightRed:    r.NewStyle().Foreground(lipgloss.Color("196")),
			model.HighlightYellow: r.NewStyle().Foreground(lipgloss.Color("220")),
			model.HighlightGreen:  r.NewStyle().Foreground(lipgloss.Color("42")),
		},
	}
}

// HighlightGlyph returns the star for a highlighting type, colored to match it.
func (st Styles) HighlightGlyph(g Glyphs, h model.HighlightingType) (string, error) {
	s, ok := st.Highlight[h]
	if !ok {
		return "", fmt.Errorf("highlighting type %q: %w", h, model.ErrUnsupportedValue)
	}
	return s.Render(g.Star), nil
}

// Line renders a task or group node as a single styled line, without indentation.
func Line(n group.Node, s *settings.Settings, g Glyphs, st Styles) string {
	switch v := n.(type) {
	case *model.Task:
		return taskLine(v, s, g, st)
	case group.Group:
		icon := g.Normal
		if p, ok := group.PriorityOf(v); ok {
			icon = st.Priority[p].Render(g.Priority(p))
		}
		return icon + " " + st.Group.Render(v.Title()) + " " + st.Details.Render(GroupDetails(v))
	}
	return n.Title()
}

func taskLine(t *model.Task, s *settings.Settings, g Glyphs, st Styles) string {
	p := EffectivePriority(t, s)
	out := st.Priority[p].Render(g.Priority(p))
	if t.Highlighted() {
		if star, err := st.HighlightGlyph(g, t.HighlightingType()); err == nil {
			out += star
		}
	}
	title, details := st.Title, st.Details
	switch {
	case t.Completed():
		title, details = st.Completed, st.Completed
	case t.Running():
		title = st.Running
		out += " " + g.Running
	}
	out += " " + title.Render(t.Title())
	if d := TaskDetails(t, s); d != "" {
		out += " " + details.Render(d)
	}
	return out
}

// GlyphsFromEnv picks the glyph set from TASKTREE_GLYPHS (unicode|ascii). Unknown values keep
// Unicode.
func GlyphsFromEnv() Glyphs {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKTREE_GLYPHS"))) {
	case "ascii":
		return ASCIIGlyphs
	default:
		return UnicodeGlyphs
	}
}
