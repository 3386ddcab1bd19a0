package tree

import (
	"tasktree/internal/group"
	"tasktree/internal/model"
)

// Row is one line of the flattened display tree.
type Row struct {
	Node        group.Node
	Depth       int
	HasChildren bool
	Collapsed   bool
}

// Task returns the row's task, or nil for group rows.
func (r Row) Task() *model.Task {
	t, _ := r.Node.(*model.Task)
	return t
}

// Key identifies a display node across rebuilds: the task ID, or "group:<title>".
func Key(n group.Node) string {
	if t, ok := n.(*model.Task); ok {
		return t.ID()
	}
	return "group:" + n.Title()
}

// Flatten walks the display tree below the root in display order. Children of nodes whose Key
// is in collapsed are skipped.
func (p *Projection) Flatten(collapsed map[string]bool) []Row {
	var out []Row
	var walk func(n group.Node, depth int)
	walk = func(n group.Node, depth int) {
		count := p.ChildCount(n)
		folded := collapsed[Key(n)]
		out = append(out, Row{
			Node:        n,
			Depth:       depth,
			HasChildren: count > 0,
			Collapsed:   folded && count > 0,
		})
		if folded {
			return
		}
		for i := 0; i < count; i++ {
			ch, err := p.Child(n, i)
			if err != nil {
				continue
			}
			walk(ch, depth+1)
		}
	}
	for i := 0; i < p.root.Len(); i++ {
		n, err := p.root.Get(i)
		if err != nil {
			continue
		}
		walk(n, 0)
	}
	return out
}
