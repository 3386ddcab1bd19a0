package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tasktree/internal/model"
)

const journalFileName = "events.jsonl"

// JournalEntry is one line of the change journal.
type JournalEntry struct {
	At       time.Time       `json:"at"`
	Kind     model.EventKind `json:"kind"`
	TaskID   string          `json:"taskId"`
	Title    string          `json:"title"`
	ParentID string          `json:"parentId,omitempty"`
	Index    int             `json:"index"`
}

// Journal records added, deleted and changed events as they happen and appends them to
// events.jsonl when the model is saved. Pre events are not journaled, and back-to-back
// changes of one task collapse into a single entry.
type Journal struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	pending []JournalEntry
}

var _ model.Listener = (*Journal)(nil)

func NewJournal(dir string) *Journal {
	return &Journal{path: filepath.Join(dir, journalFileName), now: time.Now}
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) TaskAdded(e model.ChangeEvent)   { j.record(model.EventAdded, e) }
func (j *Journal) TaskPreDelete(model.ChangeEvent) {}
func (j *Journal) TaskDeleted(e model.ChangeEvent) { j.record(model.EventDeleted, e) }
func (j *Journal) TaskPreChange(model.ChangeEvent) {}
func (j *Journal) TaskChanged(e model.ChangeEvent) { j.record(model.EventChanged, e) }

func (j *Journal) record(kind model.EventKind, e model.ChangeEvent) {
	entry := JournalEntry{
		At:     j.now().UTC(),
		Kind:   kind,
		TaskID: e.Task.ID(),
		Title:  e.Task.Title(),
		Index:  e.Index,
	}
	if e.Parent != nil {
		entry.ParentID = e.Parent.ID()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	// Timer ticks change the same task over and over; keep only the latest.
	if n := len(j.pending); n > 0 && kind == model.EventChanged {
		if last := j.pending[n-1]; last.Kind == kind && last.TaskID == entry.TaskID {
			j.pending[n-1] = entry
			return
		}
	}
	j.pending = append(j.pending, entry)
}

// Pending reports how many entries wait for the next Flush.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush appends the pending entries. On failure they stay pending.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.pending) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, e := range j.pending {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	j.pending = j.pending[:0]
	return nil
}

// JournalPath is where the change journal for this store lives.
func (s Store) JournalPath() string {
	return filepath.Join(s.Dir, journalFileName)
}

// ReadJournal returns the newest limit entries, oldest first. limit <= 0 means all.
// A missing journal is empty.
func (s Store) ReadJournal(limit int) ([]JournalEntry, error) {
	f, err := os.Open(s.JournalPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []JournalEntry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	out := []JournalEntry{}
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
			return nil, fmt.Errorf("%s:%d: %w", s.JournalPath(), line, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
