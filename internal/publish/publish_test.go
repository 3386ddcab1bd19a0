package publish

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasktree/internal/model"
)

func sample(t *testing.T) (*model.Model, *model.Task) {
	t.Helper()
	m := model.New()
	a, err := m.AddNew(nil, "Release", "Ship **1.0**.", model.PriorityImportant, 3600)
	if err != nil {
		t.Fatalf("AddNew: %v", err)
	}
	b, _ := m.AddNew(a, "Write notes", "", model.PriorityNormal, 1800)
	m.AddNew(a, "Tag build", "", model.PriorityQuestionable, 600)
	if err := m.CompleteTask(b); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if err := m.HighlightTask(a); err != nil {
		t.Fatalf("HighlightTask: %v", err)
	}
	return m, a
}

func TestRenderIndexMarkdown_TaskList(t *testing.T) {
	t.Parallel()
	m, _ := sample(t)

	md := RenderIndexMarkdown(m, "", RenderOptions{IncludeCompleted: true})
	for _, want := range []string{
		"# Tasks",
		"1 Tasks, 0% Completed",
		"- [ ] :exclamation: Release :star: (2 Tasks, 50% Completed, Estimated: 40m)",
		"  - [x] Write notes (Estimated: 30m)",
		"  - [ ] :grey_question: Tag build (Estimated: 10m)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	md = RenderIndexMarkdown(m, "Mine", RenderOptions{})
	if strings.Contains(md, "Write notes") {
		t.Fatalf("expected completed task to be hidden:\n%s", md)
	}
}

func TestRenderTaskMarkdown(t *testing.T) {
	t.Parallel()
	m, a := sample(t)

	md, err := RenderTaskMarkdown(m, a.ID(), RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTaskMarkdown: %v", err)
	}
	for _, want := range []string{"# Release", "- Priority: Important", "## Description", "Ship **1.0**.", "## Subtasks", "- Progress: 50%"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	if _, err := RenderTaskMarkdown(m, "task-missing", RenderOptions{}); !model.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExport_Formats(t *testing.T) {
	t.Parallel()
	m, _ := sample(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "tasks.json")
	if _, err := Export(m, jsonPath, WriteOptions{Format: FormatJSON}); err != nil {
		t.Fatalf("Export json: %v", err)
	}
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snap.Tasks) != 3 || snap.Tasks[0].Title != "Release" || snap.Tasks[1].ParentID != snap.Tasks[0].ID {
		t.Fatalf("unexpected snapshot: %+v", snap.Tasks)
	}

	htmlPath := filepath.Join(dir, "tasks.html")
	if _, err := Export(m, htmlPath, WriteOptions{Format: FormatHTML, IncludeCompleted: true}); err != nil {
		t.Fatalf("Export html: %v", err)
	}
	b, _ = os.ReadFile(htmlPath)
	page := string(b)
	if !strings.Contains(page, "<title>Tasks</title>") || !strings.Contains(page, `type="checkbox"`) {
		t.Fatalf("unexpected html:\n%s", page)
	}
	if strings.Contains(page, ":star:") {
		t.Fatalf("expected emoji shortcode to be rendered:\n%s", page)
	}

	if _, err := Export(m, htmlPath, WriteOptions{Format: FormatHTML}); err == nil {
		t.Fatalf("expected error without overwrite")
	}
	if _, err := Export(m, filepath.Join(dir, "x.txt"), WriteOptions{Format: "pdf"}); !errors.Is(err, model.ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
}

func TestWriteSite_WritesIndexAndTasks(t *testing.T) {
	t.Parallel()
	m, a := sample(t)

	to := t.TempDir()
	res, err := WriteSite(m, to, WriteOptions{Overwrite: true, IncludeCompleted: true})
	if err != nil {
		t.Fatalf("WriteSite: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected 4 written files; got %d (%v)", len(res.Written), res.Written)
	}
	if _, err := os.Stat(filepath.Join(to, "index.md")); err != nil {
		t.Fatalf("stat index.md: %v", err)
	}
	if _, err := os.Stat(filepath.Join(to, "tasks", a.ID()+".md")); err != nil {
		t.Fatalf("stat task page: %v", err)
	}
}
