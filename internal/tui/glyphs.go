package tui

import "tasktree/internal/render"

// Twisties follow the same TASKTREE_GLYPHS choice as the row glyphs.

func glyphTwistyCollapsed(g render.Glyphs) string {
	if g == render.ASCIIGlyphs {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded(g render.Glyphs) string {
	if g == render.ASCIIGlyphs {
		return "v"
	}
	return "▾"
}

func glyphHRule(g render.Glyphs) string {
	if g == render.ASCIIGlyphs {
		return "-"
	}
	return "─"
}
