package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Path    string           `json:"path,omitempty"`
	Line    int              `json:"line,omitempty"`
	TaskID  string           `json:"taskId,omitempty"`
}

type DoctorReport struct {
	Tasks  int           `json:"tasks"`
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor checks the stored records and the change journal without loading them into a model,
// so it can report on data that Load would refuse.
func (s Store) Doctor(ctx context.Context) DoctorReport {
	records, err := s.LoadRecords(ctx)
	if err != nil {
		return DoctorReport{Issues: []DoctorIssue{{
			Level:   DoctorIssueLevelError,
			Code:    "db_read_failed",
			Message: err.Error(),
			Path:    s.DBPath(),
		}}}
	}
	issues := CheckRecords(records)
	issues = append(issues, s.checkJournal()...)
	return DoctorReport{Tasks: len(records), Issues: issuesOrEmpty(issues)}
}

// CheckRecords reports structural and value problems in a flat record set.
func CheckRecords(records []Record) []DoctorIssue {
	var issues []DoctorIssue
	add := func(level DoctorIssueLevel, code, taskID, format string, args ...any) {
		issues = append(issues, DoctorIssue{Level: level, Code: code, TaskID: taskID, Message: fmt.Sprintf(format, args...)})
	}

	byID := map[string]Record{}
	children := map[string][]Record{}
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			add(DoctorIssueLevelError, "missing_id", "", "task %q has no id", r.Title)
			continue
		}
		if _, dup := byID[r.ID]; dup {
			add(DoctorIssueLevelError, "duplicate_id", r.ID, "id %s is used more than once", r.ID)
			continue
		}
		byID[r.ID] = r
		children[r.ParentID] = append(children[r.ParentID], r)

		if strings.TrimSpace(r.Title) == "" {
			add(DoctorIssueLevelWarn, "empty_title", r.ID, "task %s has an empty title", r.ID)
		}
		if !r.Priority.OrDefault().Valid() {
			add(DoctorIssueLevelError, "invalid_priority", r.ID, "task %s: unknown priority %q", r.ID, r.Priority)
		}
		if !r.HighlightingType.Valid() {
			add(DoctorIssueLevelError, "invalid_highlight", r.ID, "task %s: unknown highlighting type %q", r.ID, r.HighlightingType)
		}
		if r.EstimatedTime < 0 || r.ActualTime < 0 {
			add(DoctorIssueLevelError, "negative_time", r.ID, "task %s: negative time (estimated %d, actual %d)", r.ID, r.EstimatedTime, r.ActualTime)
		}
	}

	for pid, sibs := range children {
		if pid != "" {
			if _, ok := byID[pid]; !ok {
				for _, r := range sibs {
					add(DoctorIssueLevelError, "orphan", r.ID, "task %s points at missing parent %s", r.ID, pid)
				}
				continue
			}
		}
		positions := make([]int, 0, len(sibs))
		for _, r := range sibs {
			positions = append(positions, r.Position)
		}
		sort.Ints(positions)
		for i, p := range positions {
			if p != i {
				parent := pid
				if parent == "" {
					parent = "<root>"
				}
				add(DoctorIssueLevelWarn, "position_gap", pid, "children of %s are not numbered 0..%d; order is kept but positions will be renumbered on save", parent, len(sibs)-1)
				break
			}
		}
	}

	// Anything not reachable from the roots sits on a cycle or below one.
	reached := map[string]bool{}
	var walk func(pid string)
	walk = func(pid string) {
		for _, r := range children[pid] {
			if reached[r.ID] {
				continue
			}
			reached[r.ID] = true
			walk(r.ID)
		}
	}
	walk("")
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r := byID[id]
		if reached[id] {
			continue
		}
		if _, ok := byID[r.ParentID]; !ok {
			// Already reported as an orphan.
			continue
		}
		add(DoctorIssueLevelError, "cycle", id, "task %s is not reachable from the top level", id)
	}

	for _, id := range ids {
		r := byID[id]
		if r.Completed && len(children[id]) > 0 {
			add(DoctorIssueLevelWarn, "stored_completion_ignored", id, "task %s has subtasks; its stored completed flag is ignored", id)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Level != issues[j].Level {
			return issues[i].Level == DoctorIssueLevelError
		}
		return issues[i].TaskID < issues[j].TaskID
	})
	return issues
}

func (s Store) checkJournal() []DoctorIssue {
	path := s.JournalPath()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return []DoctorIssue{{Level: DoctorIssueLevelError, Code: "journal_open_failed", Message: err.Error(), Path: path}}
	}
	defer f.Close()

	var issues []DoctorIssue
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var e JournalEntry
		if err := json.Unmarshal(b, &e); err != nil {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "journal_invalid_json",
				Message: err.Error(),
				Path:    path,
				Line:    line,
			})
			continue
		}
		if e.TaskID == "" {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "journal_missing_task",
				Message: "entry without taskId",
				Path:    path,
				Line:    line,
			})
		}
	}
	if err := sc.Err(); err != nil {
		issues = append(issues, DoctorIssue{Level: DoctorIssueLevelError, Code: "journal_read_failed", Message: err.Error(), Path: path})
	}
	return issues
}

func issuesOrEmpty(in []DoctorIssue) []DoctorIssue {
	if in == nil {
		return []DoctorIssue{}
	}
	return in
}
