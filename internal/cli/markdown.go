package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdownFor renders md with glamour when w is a terminal. Anything else (pipes, files,
// test buffers) gets the raw markdown.
func renderMarkdownFor(w io.Writer, md string) string {
	f, isFile := w.(*os.File)
	if !isFile {
		return md
	}
	fi, err := f.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return md
	}
	style := "dark"
	if s := strings.TrimSpace(os.Getenv("GLAMOUR_STYLE")); s != "" {
		style = s
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
