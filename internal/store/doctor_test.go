package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"tasktree/internal/model"
)

func issueCodes(issues []DoctorIssue) []string {
	out := make([]string, 0, len(issues))
	for _, it := range issues {
		out = append(out, it.Code)
	}
	return out
}

func TestCheckRecords_Clean(t *testing.T) {
	t.Parallel()
	require.Empty(t, CheckRecords(Records(sampleModel(t))))
}

func TestCheckRecords_Problems(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "task-a", Title: "A", Priority: model.PriorityNormal, Completed: true},
		{ID: "task-b", Title: "B", ParentID: "task-a", Position: 3, Priority: model.PriorityNormal},
		{ID: "task-b", Title: "B again", Priority: model.PriorityNormal},
		{ID: "task-c", Title: "", ParentID: "task-gone", Priority: model.PriorityNormal},
		{ID: "task-d", Title: "D", ParentID: "task-e", Priority: "urgent"},
		{ID: "task-e", Title: "E", ParentID: "task-d", Priority: model.PriorityNormal, ActualTime: -1},
	}
	issues := CheckRecords(recs)
	require.ElementsMatch(t, []string{
		"duplicate_id",
		"empty_title",
		"invalid_priority",
		"negative_time",
		"orphan",
		"position_gap",
		"cycle",
		"cycle",
		"stored_completion_ignored",
	}, issueCodes(issues))
	require.Equal(t, DoctorIssueLevelError, issues[0].Level, "errors sort first")
}

func TestDoctor_Store(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	rep := s.Doctor(ctx)
	require.False(t, rep.HasErrors())
	require.Equal(t, 0, rep.Tasks)
	require.NotNil(t, rep.Issues)

	require.NoError(t, s.Save(ctx, sampleModel(t)))
	require.NoError(t, os.WriteFile(s.JournalPath(), []byte("{broken\n"), 0o644))
	rep = s.Doctor(ctx)
	require.Equal(t, 4, rep.Tasks)
	require.False(t, rep.HasErrors())
	require.Equal(t, []string{"journal_invalid_json"}, issueCodes(rep.Issues))
	require.Equal(t, 1, rep.Issues[0].Line)
}
