package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tasktree/internal/model"
	"tasktree/internal/settings"
)

func sampleModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	a, err := m.AddNew(nil, "A", "first", model.PriorityImportant, 60)
	require.NoError(t, err)
	b, err := m.AddNew(a, "B", "", model.PriorityNormal, 30)
	require.NoError(t, err)
	_, err = m.AddNew(a, "C", "", model.PriorityQuestionable, 20)
	require.NoError(t, err)
	_, err = m.AddNew(nil, "D", "", model.PriorityNormal, 0)
	require.NoError(t, err)
	require.NoError(t, m.UpdateActualTime(b, 10))
	require.NoError(t, m.CompleteTask(b))
	require.NoError(t, m.HighlightTask(a))
	require.NoError(t, m.SetTaskHighlightingType(a, model.HighlightGreen))
	return m
}

func TestRecords_PreOrderWithPositions(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)

	recs := Records(m)
	require.Len(t, recs, 4)
	titles := []string{recs[0].Title, recs[1].Title, recs[2].Title, recs[3].Title}
	require.Equal(t, []string{"A", "B", "C", "D"}, titles)
	require.Equal(t, "", recs[0].ParentID)
	require.Equal(t, recs[0].ID, recs[2].ParentID)
	require.Equal(t, 1, recs[2].Position)
	require.Equal(t, 1, recs[3].Position)
	// Stored values, not aggregates.
	require.Equal(t, int64(60), recs[0].EstimatedTime)
	require.True(t, recs[1].Completed)
}

func TestRebuild_EquivalentModel(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)
	recs := Records(m)

	// Order must not matter.
	shuffled := []Record{recs[3], recs[2], recs[0], recs[1]}
	got, err := Rebuild(shuffled)
	require.NoError(t, err)
	require.Equal(t, recs, Records(got))

	a, ok := got.Find(recs[0].ID)
	require.True(t, ok)
	require.Equal(t, int64(50), a.EstimatedTime())
	require.Equal(t, int64(10), a.ActualTime())
	require.Equal(t, 50, a.CompletionRatio())
	require.Equal(t, model.HighlightGreen, a.HighlightingType())
}

func TestRebuild_Errors(t *testing.T) {
	t.Parallel()

	_, err := Rebuild([]Record{{ID: "task-a", Title: "A", ParentID: "task-missing"}})
	require.True(t, model.IsNotFound(err), "got %v", err)

	_, err = Rebuild([]Record{{ID: "task-a", Title: "A"}, {ID: "task-a", Title: "A again"}})
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = Rebuild([]Record{
		{ID: "task-a", Title: "A", ParentID: "task-b"},
		{ID: "task-b", Title: "B", ParentID: "task-a"},
	})
	require.ErrorIs(t, err, model.ErrCycle)

	_, err = Rebuild([]Record{{ID: "task-a", Title: "A", Priority: "urgent"}})
	require.ErrorIs(t, err, model.ErrUnsupportedValue)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())

	m := sampleModel(t)
	require.NoError(t, s.Save(ctx, m))
	_, err = os.Stat(filepath.Join(s.Dir, "tasks.sqlite"))
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	want := Records(m)
	have := Records(got)
	require.Len(t, have, len(want))
	for i := range want {
		require.True(t, want[i].CreationTime.Equal(have[i].CreationTime))
		want[i].CreationTime, have[i].CreationTime = time.Time{}, time.Time{}
	}
	require.Equal(t, want, have)

	// Saving replaces, it does not append.
	d, ok := got.Find(want[3].ID)
	require.True(t, ok)
	require.NoError(t, got.DeleteTask(d))
	require.NoError(t, s.Save(ctx, got))
	recs, err := s.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
}

func TestSettings_LoadSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKTREE_CONFIG_DIR", dir)

	v, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, settings.Defaults(), v)

	jsonc := []byte(`{
  // show parents with their most urgent child
  "propagatePriority": true,
  "askActualWhenCompleteTask": true,
}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), jsonc, 0o644))
	v, err = LoadSettings()
	require.NoError(t, err)
	require.True(t, v.PropagatePriority)
	require.True(t, v.AskActualWhenCompleteTask)
	require.True(t, v.EnableActualTime, "absent keys keep defaults")

	v.EnableTasksScope = true
	require.NoError(t, SaveSettings(v))
	_, err = os.Stat(filepath.Join(dir, "settings.json.bak"))
	require.NoError(t, err)
	again, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, v, again)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{"propagatePriority": `), 0o644))
	_, err = LoadSettings()
	require.Error(t, err)
}

func TestViewState_SaveLoad(t *testing.T) {
	t.Parallel()
	s := Store{Dir: t.TempDir()}

	st, err := s.LoadViewState()
	require.NoError(t, err)
	require.Equal(t, &ViewState{Version: 1}, st)

	want := &ViewState{Version: 1, Grouped: true, HideCompleted: true, SelectedID: "task-abc", Collapsed: []string{"task-x", "group:Normal"}}
	require.NoError(t, s.SaveViewState(want))
	got, err := s.LoadViewState()
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "view_state.json"), []byte("{"), 0o644))
	got, err = s.LoadViewState()
	require.NoError(t, err)
	require.Equal(t, &ViewState{Version: 1}, got)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("TASKTREE_DIR", "")
	t.Setenv("TASKTREE_CONFIG_DIR", "/tmp/tt-config")
	dir, err := DefaultDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/tmp/tt-config", "data"), dir)

	t.Setenv("TASKTREE_DIR", "/tmp/tt-data")
	dir, err = DefaultDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/tt-data", dir)
	require.False(t, errors.Is(err, os.ErrNotExist))
}
