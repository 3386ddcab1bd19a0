package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/list"

	"tasktree/internal/model"
	"tasktree/internal/tree"
)

// rowItem adapts a flattened display row to bubbles/list.
type rowItem struct {
	row tree.Row
}

func (it rowItem) FilterValue() string { return it.row.Node.Title() }
func (it rowItem) Title() string       { return it.row.Node.Title() }

func rowItems(rows []tree.Row) []list.Item {
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, rowItem{row: r})
	}
	return items
}

// indexOfKey returns the row index of the node with the given Key, or -1.
func indexOfKey(items []list.Item, key string) int {
	for i, it := range items {
		if ri, ok := it.(rowItem); ok && tree.Key(ri.row.Node) == key {
			return i
		}
	}
	return -1
}

// expandTo uncollapses every ancestor of t so it becomes visible.
func expandTo(collapsed map[string]bool, t *model.Task) {
	for p := t.Parent(); p != nil; p = p.Parent() {
		delete(collapsed, p.ID())
	}
}

func collapsedKeys(collapsed map[string]bool) []string {
	keys := make([]string, 0, len(collapsed))
	for k, v := range collapsed {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
