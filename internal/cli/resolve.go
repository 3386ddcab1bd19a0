package cli

import (
	"strings"

	"tasktree/internal/model"
)

// resolveTask finds a task by exact id, unique id prefix, or unique case-insensitive title.
func resolveTask(m *model.Model, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &model.NotFoundError{Kind: "task", ID: ref}
	}
	if t, ok := m.Find(ref); ok {
		return t, nil
	}

	var byPrefix, byTitle []*model.Task
	m.Walk(func(t *model.Task, _ int) bool {
		if strings.HasPrefix(t.ID(), ref) || strings.HasPrefix(t.ID(), "task-"+ref) {
			byPrefix = append(byPrefix, t)
		}
		if strings.EqualFold(t.Title(), ref) {
			byTitle = append(byTitle, t)
		}
		return true
	})
	for _, set := range [][]*model.Task{byPrefix, byTitle} {
		switch len(set) {
		case 0:
			continue
		case 1:
			return set[0], nil
		default:
			ids := make([]string, 0, len(set))
			for _, t := range set {
				ids = append(ids, t.ID())
			}
			return nil, errAmbiguous(ref, ids)
		}
	}
	return nil, &model.NotFoundError{Kind: "task", ID: ref}
}

// resolveParent is resolveTask, except that an empty ref means the root level.
func resolveParent(m *model.Model, ref string) (*model.Task, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	t, err := resolveTask(m, ref)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, &model.NotFoundError{Kind: "parent task", ID: ref}
		}
		return nil, err
	}
	return t, nil
}
