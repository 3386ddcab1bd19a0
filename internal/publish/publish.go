package publish

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"tasktree/internal/model"
	"tasktree/internal/settings"
	"tasktree/internal/store"
)

const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

func Formats() []string { return []string{FormatJSON, FormatMarkdown, FormatHTML} }

type WriteOptions struct {
	Format           string
	Title            string
	IncludeCompleted bool
	Overwrite        bool
	Settings         *settings.Settings
}

type WriteResult struct {
	Written []string `json:"written"`
}

// Snapshot is the JSON export: every task record in pre-order.
type Snapshot struct {
	Version int            `json:"version"`
	Tasks   []store.Record `json:"tasks"`
}

// Export renders the whole model in opt.Format and writes it to path.
func Export(m *model.Model, path string, opt WriteOptions) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing output path")
	}
	b, err := Render(m, opt)
	if err != nil {
		return WriteResult{}, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WriteResult{}, err
		}
	}
	if err := writeFile(path, b, opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{path}}, nil
}

// Render produces the export bytes without touching the filesystem.
func Render(m *model.Model, opt WriteOptions) ([]byte, error) {
	ropt := RenderOptions{IncludeCompleted: opt.IncludeCompleted, Settings: opt.Settings}
	switch strings.ToLower(strings.TrimSpace(opt.Format)) {
	case FormatJSON, "":
		b, err := json.MarshalIndent(Snapshot{Version: 1, Tasks: store.Records(m)}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatMarkdown, "md":
		return []byte(RenderIndexMarkdown(m, opt.Title, ropt)), nil
	case FormatHTML:
		md := RenderIndexMarkdown(m, opt.Title, ropt)
		page, err := RenderHTML(titleOr(opt.Title), md)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	default:
		return nil, fmt.Errorf("export format %q (want json|markdown|html): %w", opt.Format, model.ErrUnsupportedValue)
	}
}

// WriteSite writes index.md plus one page per task under toDir/tasks.
func WriteSite(m *model.Model, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	tasksDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	ropt := RenderOptions{IncludeCompleted: opt.IncludeCompleted, LinkTasks: true, Settings: opt.Settings}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(m, opt.Title, ropt)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{indexPath}

	var walkErr error
	m.Walk(func(t *model.Task, _ int) bool {
		md, err := RenderTaskMarkdown(m, t.ID(), ropt)
		if err != nil {
			walkErr = err
			return false
		}
		p := filepath.Join(tasksDir, t.ID()+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			walkErr = err
			return false
		}
		written = append(written, p)
		return true
	})
	if walkErr != nil {
		return WriteResult{}, walkErr
	}
	return WriteResult{Written: written}, nil
}

func titleOr(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Tasks"
	}
	return strings.TrimSpace(title)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}
