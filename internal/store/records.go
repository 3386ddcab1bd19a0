package store

import (
	"fmt"
	"sort"
	"time"

	"tasktree/internal/model"
)

// Record is the flat, persisted form of one task. Stored values are raw: aggregates are
// recomputed from the tree after loading.
type Record struct {
	ID               string                 `json:"id"`
	ParentID         string                 `json:"parentId,omitempty"`
	Position         int                    `json:"position"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description,omitempty"`
	Priority         model.Priority         `json:"priority"`
	EstimatedTime    int64                  `json:"estimatedTime"`
	ActualTime       int64                  `json:"actualTime"`
	CreationTime     time.Time              `json:"creationTime"`
	Completed        bool                   `json:"completed"`
	Highlighted      bool                   `json:"highlighted"`
	HighlightingType model.HighlightingType `json:"highlightingType,omitempty"`
}

// Records lists every task in pre-order, parents before children.
func Records(m *model.Model) []Record {
	var out []Record
	m.Walk(func(t *model.Task, _ int) bool {
		r := Record{
			ID:               t.ID(),
			Title:            t.Title(),
			Description:      t.Description(),
			Priority:         t.Priority(),
			EstimatedTime:    t.StoredEstimatedTime(),
			ActualTime:       t.StoredActualTime(),
			CreationTime:     t.CreationTime(),
			Completed:        t.StoredCompleted(),
			Highlighted:      t.Highlighted(),
			HighlightingType: t.HighlightingType(),
		}
		if p := t.Parent(); p != nil {
			r.ParentID = p.ID()
			r.Position = p.IndexOf(t)
		} else {
			r.Position = rootPosition(m, t)
		}
		out = append(out, r)
		return true
	})
	return out
}

func rootPosition(m *model.Model, t *model.Task) int {
	for i, r := range m.Roots() {
		if r == t {
			return i
		}
	}
	return -1
}

// Rebuild reconstructs a model from records in any order. Siblings are ordered by Position.
// No listener sees the load.
func Rebuild(records []Record) (*model.Model, error) {
	byID := make(map[string]*model.Task, len(records))
	children := map[string][]Record{}
	for _, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %q: missing id: %w", r.Title, model.ErrInvalidArgument)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("record %s: duplicate id: %w", r.ID, model.ErrInvalidArgument)
		}
		t, err := model.NewBuilder().
			ID(r.ID).
			Title(r.Title).
			Description(r.Description).
			Priority(r.Priority).
			EstimatedTime(r.EstimatedTime).
			ActualTime(r.ActualTime).
			CreationTime(r.CreationTime).
			Completed(r.Completed).
			Highlighted(r.Highlighted).
			HighlightingType(r.HighlightingType).
			Build()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		byID[r.ID] = t
		children[r.ParentID] = append(children[r.ParentID], r)
	}
	for pid := range children {
		if pid == "" {
			continue
		}
		if _, ok := byID[pid]; !ok {
			return nil, &model.NotFoundError{Kind: "parent task", ID: pid}
		}
	}
	for pid, sibs := range children {
		sort.SliceStable(sibs, func(i, j int) bool { return sibs[i].Position < sibs[j].Position })
		children[pid] = sibs
	}

	m := model.New()
	attached := 0
	var attach func(parent *model.Task, pid string) error
	attach = func(parent *model.Task, pid string) error {
		for _, r := range children[pid] {
			t := byID[r.ID]
			if err := m.Restore(parent, t); err != nil {
				return fmt.Errorf("record %s: %w", r.ID, err)
			}
			attached++
			if err := attach(t, r.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := attach(nil, ""); err != nil {
		return nil, err
	}
	if attached != len(records) {
		return nil, fmt.Errorf("%d records unreachable from the roots: %w", len(records)-attached, model.ErrCycle)
	}
	return m, nil
}
