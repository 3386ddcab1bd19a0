package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tasktree/internal/model"
	"tasktree/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runApp(t, &App{}, args)
}

func runApp(t *testing.T, app *App, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := newRootCmd(app)

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// testEnv isolates the config dir and returns a fresh data dir.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("TASKTREE_CONFIG_DIR", t.TempDir())
	t.Setenv("TASKTREE_FORMAT", "")
	t.Setenv("TASKTREE_DEBUG", "")
	return t.TempDir()
}

func mustData(t *testing.T, dir string, args ...string) any {
	t.Helper()
	stdout, stderr, err := runCLI(t, append([]string{"--dir", dir}, args...))
	require.NoError(t, err, "tasktree %v\nstderr:\n%s", args, stderr)
	var env map[string]any
	require.NoError(t, json.Unmarshal(stdout, &env), "stdout:\n%s", stdout)
	data, ok := env["data"]
	require.True(t, ok, "missing data key: %s", stdout)
	return data
}

func mustTask(t *testing.T, dir string, args ...string) map[string]any {
	t.Helper()
	v, ok := mustData(t, dir, args...).(map[string]any)
	require.True(t, ok)
	return v
}

func titlesOf(items []any) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.(map[string]any)["title"].(string))
	}
	return out
}

func TestAddListShow(t *testing.T) {
	dir := testEnv(t)

	parent := mustTask(t, dir, "add", "Release", "--priority", "important")
	pid := parent["id"].(string)
	require.True(t, model.LooksLikeID(pid))

	mustTask(t, dir, "add", "Changelog", "--parent", pid, "--estimate", "30m")
	mustTask(t, dir, "add", "Tag", "--parent", "release", "--estimate", "1h")

	list := mustData(t, dir, "list").([]any)
	require.Equal(t, []string{"Release"}, titlesOf(list))
	root := list[0].(map[string]any)
	require.Equal(t, []string{"Changelog", "Tag"}, titlesOf(root["subtasks"].([]any)))
	require.EqualValues(t, 90*60, root["estimatedTime"])
	require.Equal(t, "(2 Tasks, 0% Completed, Estimated: 1h30m)", root["details"])

	shown := mustTask(t, dir, "show", pid[:9])
	require.Equal(t, pid, shown["id"])
	require.Len(t, shown["subtasks"].([]any), 2)
}

func TestShowTextIsMarkdown(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Write docs", "-d", "Cover the **CLI**.")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "show", "Write docs"})
	require.NoError(t, err)
	out := string(stdout)
	require.Contains(t, out, "# Write docs")
	require.Contains(t, out, "Cover the **CLI**.")
}

func TestListTextAndGrouped(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("TASKTREE_GLYPHS", "ascii")
	mustTask(t, dir, "add", "Urgent", "-p", "important")
	mustTask(t, dir, "add", "Maybe", "-p", "questionable")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "list"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "!"), lines[0])
	require.Contains(t, lines[0], "Urgent")
	require.True(t, strings.HasPrefix(lines[1], "?"), lines[1])

	groups := mustData(t, dir, "list", "--grouped").([]any)
	require.Len(t, groups, 3)
	first := groups[0].(map[string]any)
	require.Equal(t, "Important", first["title"])
	require.Equal(t, []string{"Urgent"}, titlesOf(first["tasks"].([]any)))
	require.Empty(t, groups[1].(map[string]any)["tasks"])
}

func TestListHideCompleted(t *testing.T) {
	dir := testEnv(t)
	a := mustTask(t, dir, "add", "Done already")
	mustTask(t, dir, "add", "Still open")
	mustTask(t, dir, "complete", a["id"].(string))

	list := mustData(t, dir, "list", "--hide-completed").([]any)
	require.Equal(t, []string{"Still open"}, titlesOf(list))
}

func TestUpdateRelocatesToEndOfNewParent(t *testing.T) {
	dir := testEnv(t)
	a := mustTask(t, dir, "add", "A")
	mustTask(t, dir, "add", "A1", "--parent", "A")
	b := mustTask(t, dir, "add", "B")

	got := mustTask(t, dir, "update", b["id"].(string), "--parent", a["id"].(string), "--title", "B renamed")
	require.Equal(t, "B renamed", got["title"])
	require.Equal(t, a["id"], got["parentId"])

	list := mustData(t, dir, "list").([]any)
	require.Equal(t, []string{"A"}, titlesOf(list))
	require.Equal(t, []string{"A1", "B renamed"}, titlesOf(list[0].(map[string]any)["subtasks"].([]any)))
}

func TestMoveAndShift(t *testing.T) {
	dir := testEnv(t)
	a := mustTask(t, dir, "add", "A")
	mustTask(t, dir, "add", "B")
	c := mustTask(t, dir, "add", "C", "--parent", "A")

	pos := mustTask(t, dir, "move", c["id"].(string), "--root", "--index", "0")
	require.Nil(t, pos["parentId"])
	require.EqualValues(t, 0, pos["index"])
	require.Equal(t, []string{"C", "A", "B"}, titlesOf(mustData(t, dir, "list").([]any)))

	mustTask(t, dir, "down", "C")
	require.Equal(t, []string{"A", "C", "B"}, titlesOf(mustData(t, dir, "list").([]any)))
	mustTask(t, dir, "up", "A")
	require.Equal(t, []string{"A", "C", "B"}, titlesOf(mustData(t, dir, "list").([]any)))

	_, _, err := runCLI(t, []string{"--dir", dir, "move", "A", "--parent", "A"})
	require.ErrorIs(t, err, model.ErrCycle)

	_, _, err = runCLI(t, []string{"--dir", dir, "move", a["id"].(string)})
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "A")
	mustTask(t, dir, "add", "A1", "--parent", "A")
	mustTask(t, dir, "add", "B")

	res := mustTask(t, dir, "delete", "A")
	require.EqualValues(t, 2, res["removed"])
	require.Equal(t, []string{"B"}, titlesOf(mustData(t, dir, "list").([]any)))

	_, stderr, err := runCLI(t, []string{"--dir", dir, "show", "A"})
	require.True(t, model.IsNotFound(err))
	require.Contains(t, string(stderr), "task not found: A")
}

type fakePrompter struct {
	answers []string
	labels  []string
}

func (p *fakePrompter) Prompt(label string) (string, error) {
	p.labels = append(p.labels, label)
	if len(p.answers) == 0 {
		return "", errPromptAborted
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func TestCompleteAsksForActualTime(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Leaf")
	mustData(t, dir, "settings", "set", "askActualWhenCompleteTask", "on")

	p := &fakePrompter{answers: []string{"soon", "1h5m"}}
	stdout, stderr, err := runApp(t, &App{Prompter: p}, []string{"--dir", dir, "complete", "Leaf"})
	require.NoError(t, err, string(stderr))
	require.Len(t, p.labels, 2)
	require.Contains(t, p.labels[0], `"Leaf"`)

	var env struct {
		Data taskView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout, &env))
	require.True(t, env.Data.Completed)
	require.EqualValues(t, 65*60, env.Data.ActualTime)
}

func TestCompleteWithActualFlagSkipsPrompt(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Leaf")
	mustData(t, dir, "settings", "set", "ask-actual-when-complete-task", "yes")

	p := &fakePrompter{}
	_, _, err := runApp(t, &App{Prompter: p}, []string{"--dir", dir, "complete", "Leaf", "--actual", "20"})
	require.NoError(t, err)
	require.Empty(t, p.labels)

	got := mustTask(t, dir, "show", "Leaf")
	require.EqualValues(t, 20*60, got["actualTime"])

	reopened := mustTask(t, dir, "uncomplete", "Leaf")
	require.Equal(t, false, reopened["completed"])
}

func TestHighlightCycle(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Star me")

	got := mustTask(t, dir, "highlight", "Star me", "--cycle")
	require.Equal(t, true, got["highlighted"])
	require.Equal(t, "red", got["highlightingType"])

	got = mustTask(t, dir, "highlight", "Star me", "--cycle")
	require.Equal(t, "yellow", got["highlightingType"])

	got = mustTask(t, dir, "highlight", "Star me", "--type", "green")
	require.Equal(t, "green", got["highlightingType"])

	got = mustTask(t, dir, "highlight", "Star me", "--off")
	require.Equal(t, false, got["highlighted"])

	_, _, err := runCLI(t, []string{"--dir", dir, "highlight", "Star me", "--type", "blue"})
	require.ErrorContains(t, err, "unsupported value")
}

func TestTimeAndTrack(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Work")

	got := mustTask(t, dir, "time", "Work", "--set", "1h")
	require.EqualValues(t, 3600, got["actualTime"])
	got = mustTask(t, dir, "time", "Work", "--add", "15")
	require.EqualValues(t, 4500, got["actualTime"])

	res := mustTask(t, dir, "track", "Work", "--for", "300ms", "--interval", "10ms")
	tracked := res["tracked"].(float64)
	require.Greater(t, tracked, float64(0))

	after := mustTask(t, dir, "show", "Work")
	require.EqualValues(t, 4500+tracked, after["actualTime"])
	require.Nil(t, after["running"])
}

func TestTrackRequiresActualTime(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Work")
	mustData(t, dir, "settings", "set", "enableActualTime", "off")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "track", "Work", "--for", "200ms", "--interval", "10ms"})
	require.ErrorIs(t, err, errTrackingDisabled)
	require.Contains(t, string(stderr), "enableActualTime")

	after := mustTask(t, dir, "show", "Work")
	require.EqualValues(t, 0, after["actualTime"])
}

func TestTrackRefusesParent(t *testing.T) {
	dir := testEnv(t)
	parent := mustTask(t, dir, "add", "Release")
	mustTask(t, dir, "add", "Notes", "--parent", parent["id"].(string))

	_, _, err := runCLI(t, []string{"--dir", dir, "track", "Release", "--for", "50ms", "--interval", "10ms"})
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestExportAndPublish(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Ship it", "-p", "important")
	done := mustTask(t, dir, "add", "Old news")
	mustTask(t, dir, "complete", done["id"].(string))

	stdout, _, err := runCLI(t, []string{"--dir", dir, "export", "--as", "markdown", "--out", "-", "--include-completed=false"})
	require.NoError(t, err)
	md := string(stdout)
	require.Contains(t, md, "- [ ] :exclamation: Ship it")
	require.NotContains(t, md, "Old news")

	out := filepath.Join(t.TempDir(), "backup.json")
	res := mustTask(t, dir, "export", "--out", out)
	require.Equal(t, []any{out}, res["written"])
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(b), `"title": "Ship it"`)

	_, _, err = runCLI(t, []string{"--dir", dir, "export", "--out", out})
	require.Error(t, err)

	site := t.TempDir()
	res = mustTask(t, dir, "publish", "--to", site)
	require.Len(t, res["written"], 3)
	_, err = os.Stat(filepath.Join(site, "index.md"))
	require.NoError(t, err)
}

func TestSettings(t *testing.T) {
	dir := testEnv(t)

	got := mustTask(t, dir, "settings", "show")
	s := got["settings"].(map[string]any)
	require.Equal(t, true, s["enableActualTime"])
	require.Equal(t, false, s["propagatePriority"])

	got = mustTask(t, dir, "settings", "set", "propagate-priority", "on")
	require.Equal(t, true, got["changed"])
	got = mustTask(t, dir, "settings", "set", "propagatePriority", "true")
	require.Equal(t, false, got["changed"])

	_, _, err := runCLI(t, []string{"--dir", dir, "settings", "set", "nope", "on"})
	require.Error(t, err)

	mustTask(t, dir, "add", "Parent")
	mustTask(t, dir, "add", "Child", "--parent", "Parent", "-p", "important")
	parent := mustTask(t, dir, "show", "Parent")
	require.Equal(t, "normal", parent["priority"])
	require.Equal(t, "important", parent["effectivePriority"])
}

func TestDocs(t *testing.T) {
	dir := testEnv(t)
	got := mustTask(t, dir, "docs")
	require.Contains(t, got["topics"], "tasks")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "docs", "moving", "--raw"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(stdout), "# Moving tasks"))

	_, _, err = runCLI(t, []string{"--dir", dir, "docs", "nope"})
	require.Error(t, err)
}

func TestResolveTask(t *testing.T) {
	m := model.New()
	a, err := m.AddNew(nil, "Alpha", "", model.PriorityNormal, 0)
	require.NoError(t, err)
	b, err := m.AddNew(nil, "beta", "", model.PriorityNormal, 0)
	require.NoError(t, err)
	_, err = m.AddNew(b, "Beta", "", model.PriorityNormal, 0)
	require.NoError(t, err)

	got, err := resolveTask(m, a.ID())
	require.NoError(t, err)
	require.Same(t, a, got)

	got, err = resolveTask(m, strings.TrimPrefix(a.ID(), "task-"))
	require.NoError(t, err)
	require.Same(t, a, got)

	got, err = resolveTask(m, "ALPHA")
	require.NoError(t, err)
	require.Same(t, a, got)

	_, err = resolveTask(m, "BETA")
	var amb ambiguousError
	require.True(t, errors.As(err, &amb), "got %v", err)

	_, err = resolveTask(m, "gamma")
	require.True(t, model.IsNotFound(err))

	parent, err := resolveParent(m, "")
	require.NoError(t, err)
	require.Nil(t, parent)
	_, err = resolveParent(m, "gamma")
	require.EqualError(t, err, "parent task not found: gamma")
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int64{
		"":      0,
		"45":    45 * 60,
		"1h30m": 90 * 60,
		"90s":   90,
	}
	for in, want := range cases {
		got, err := parseDuration(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := parseDuration("-5")
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = parseDuration("soon")
	require.Error(t, err)
}

func TestEventsJournal(t *testing.T) {
	dir := testEnv(t)

	a := mustTask(t, dir, "add", "Alpha")
	mustTask(t, dir, "add", "Beta")
	mustTask(t, dir, "complete", a["id"].(string))

	events := mustData(t, dir, "events").([]any)
	require.Len(t, events, 3)
	kinds := []string{}
	for _, e := range events {
		kinds = append(kinds, e.(map[string]any)["kind"].(string))
	}
	require.Equal(t, []string{"added", "added", "changed"}, kinds)
	require.Equal(t, a["id"], events[2].(map[string]any)["taskId"])

	last := mustData(t, dir, "events", "-n", "1").([]any)
	require.Len(t, last, 1)

	out, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "events"})
	require.NoError(t, err)
	require.Contains(t, string(out), "Beta")
}

func TestDoctor(t *testing.T) {
	dir := testEnv(t)
	mustTask(t, dir, "add", "Alpha")

	rep := mustTask(t, dir, "doctor")
	require.EqualValues(t, 1, rep["tasks"])
	require.Empty(t, rep["issues"])

	s := store.Store{Dir: dir}
	require.NoError(t, s.SaveRecords(context.Background(), []store.Record{
		{ID: "task-a", Title: "A", ParentID: "task-gone", Priority: model.PriorityNormal},
	}))
	out, _, err := runCLI(t, []string{"--dir", dir, "doctor"})
	require.ErrorIs(t, err, errDoctorFoundErrors)
	require.Contains(t, string(out), "orphan")
}
