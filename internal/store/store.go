// Package store persists the task model in a local SQLite file and keeps user settings and
// view state next to it.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"tasktree/internal/model"
)

const dbFileName = "tasks.sqlite"

type Store struct {
	Dir string
	Log *log.Logger
	// Journal, when set, is flushed after every successful Save.
	Journal *Journal
}

// DefaultDir resolves the data directory: TASKTREE_DIR, else <config dir>/data.
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKTREE_DIR")); v != "" {
		return v, nil
	}
	cfg, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "data"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) DBPath() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s Store) logger() *log.Logger {
	if s.Log != nil {
		return s.Log
	}
	return log.New(io.Discard)
}

// Load reads the model from disk. A missing database yields an empty model.
func (s Store) Load(ctx context.Context) (*model.Model, error) {
	records, err := s.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	m, err := Rebuild(records)
	if err != nil {
		return nil, err
	}
	s.logger().Debug("loaded tasks", "count", len(records), "path", s.DBPath())
	return m, nil
}

// Save replaces the stored tasks with the model's current contents.
func (s Store) Save(ctx context.Context, m *model.Model) error {
	records := Records(m)
	if err := s.SaveRecords(ctx, records); err != nil {
		return err
	}
	s.logger().Debug("saved tasks", "count", len(records), "path", s.DBPath())
	if s.Journal != nil {
		if err := s.Journal.Flush(); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	return nil
}
