package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const viewStateFileName = "view_state.json"

// ViewState is the TUI layout restored on relaunch. It is best effort: a missing or corrupt
// file yields the zero state.
type ViewState struct {
	Version       int      `json:"version"`
	Grouped       bool     `json:"grouped,omitempty"`
	HideCompleted bool     `json:"hideCompleted,omitempty"`
	ShowDetail    bool     `json:"showDetail,omitempty"`
	SelectedID    string   `json:"selectedId,omitempty"`
	Collapsed     []string `json:"collapsed,omitempty"`
}

func (s Store) viewStatePath() string {
	return filepath.Join(s.Dir, viewStateFileName)
}

func (s Store) LoadViewState() (*ViewState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &ViewState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.viewStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ViewState{Version: 1}, nil
		}
		return nil, err
	}
	var st ViewState
	if err := json.Unmarshal(b, &st); err != nil {
		s.logger().Warn("ignoring corrupt view state", "path", s.viewStatePath(), "err", err)
		return &ViewState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveViewState(st *ViewState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.viewStatePath(), bytes.NewReader(b))
}
