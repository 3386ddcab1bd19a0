// Package tree projects the task model into a display tree of groups and tasks and keeps a
// consumer (list widget, CLI printer) in sync by translating model events into Updates.
package tree

import (
	"fmt"

	"tasktree/internal/group"
	"tasktree/internal/model"
)

type UpdateKind int

const (
	Inserted UpdateKind = iota
	Removed
	Changed
	StructureChanged
)

func (k UpdateKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	case StructureChanged:
		return "structure-changed"
	default:
		return fmt.Sprintf("UpdateKind(%d)", int(k))
	}
}

// Update tells a consumer how to patch its copy of the display tree.
//
// Path runs from the root group to the display parent of Node; Index is Node's position among
// that parent's visible children. Aggregates of the nodes on Path may have changed as well.
// StructureChanged means "reload everything below Path[0]" and carries Index -1.
type Update struct {
	Kind  UpdateKind
	Path  []group.Node
	Index int
	Node  group.Node
}

type location struct {
	path    []group.Node
	index   int
	visible bool
}

func (l location) same(o location) bool {
	if l.visible != o.visible || l.index != o.index || len(l.path) != len(o.path) {
		return false
	}
	for i := range l.path {
		if l.path[i] != o.path[i] {
			return false
		}
	}
	return true
}

type pending struct {
	loc    location
	change bool
}

// Projection is a model.Listener. Create it with New and release it with Close.
type Projection struct {
	m       *model.Model
	out     func(Update)
	grouped bool
	filter  group.Filter
	root    group.Group
	shown   map[*model.Task]bool
	pending map[*model.Task]pending
}

// New builds an ungrouped, unfiltered projection of m and subscribes it. out may be nil.
func New(m *model.Model, out func(Update)) *Projection {
	p := &Projection{m: m, out: out, pending: map[*model.Task]pending{}}
	p.rebuild()
	m.AddChangeListener(p)
	return p
}

// Close unsubscribes the projection from the model.
func (p *Projection) Close() { p.m.RemoveChangeListener(p) }

func (p *Projection) Root() group.Group    { return p.root }
func (p *Projection) Grouped() bool        { return p.grouped }
func (p *Projection) Filter() group.Filter { return p.filter }

// SetGrouped switches between the flat "All Tasks" root and per-priority groups.
func (p *Projection) SetGrouped(grouped bool) {
	if p.grouped == grouped {
		return
	}
	p.grouped = grouped
	p.rebuild()
	p.structureChanged()
}

// SetFilter hides tasks rejected by f at every level; nil shows everything.
func (p *Projection) SetFilter(f group.Filter) {
	p.filter = f
	p.rebuild()
	p.structureChanged()
}

func (p *Projection) rebuild() {
	if p.grouped {
		p.root = group.GroupByPriority(p.m, p.filter)
	} else {
		p.root = group.AllTasks(p.m, p.filter)
	}
	p.shown = p.computeShown()
	clear(p.pending)
}

func (p *Projection) accepts(t *model.Task) bool {
	return p.filter == nil || p.filter(t)
}

func (p *Projection) computeShown() map[*model.Task]bool {
	shown := map[*model.Task]bool{}
	var walk func(t *model.Task)
	walk = func(t *model.Task) {
		if !p.accepts(t) {
			return
		}
		shown[t] = true
		for _, ch := range t.Children() {
			walk(ch)
		}
	}
	for _, r := range p.m.Roots() {
		walk(r)
	}
	return shown
}

// ChildCount returns how many visible children node has in the display tree.
func (p *Projection) ChildCount(node group.Node) int {
	switch n := node.(type) {
	case group.Group:
		return n.Len()
	case *model.Task:
		return group.NewView(n.Title(), n, p.filter).Len()
	}
	return 0
}

// Child returns the index-th visible child of node.
func (p *Projection) Child(node group.Node, index int) (group.Node, error) {
	switch n := node.(type) {
	case group.Group:
		return n.Get(index)
	case *model.Task:
		return group.NewView(n.Title(), n, p.filter).Get(index)
	}
	return nil, fmt.Errorf("child %d of %v: %w", index, node, model.ErrIndexOutOfRange)
}

// IndexOfChild returns child's display index under parent, or -1.
func (p *Projection) IndexOfChild(parent, child group.Node) int {
	for i := 0; i < p.ChildCount(parent); i++ {
		if n, err := p.Child(parent, i); err == nil && n == child {
			return i
		}
	}
	return -1
}

// PathTo returns the display path to t's parent node and t's index there. ok is false when t
// (or one of its ancestors) is hidden or not in the model.
func (p *Projection) PathTo(t *model.Task) (path []group.Node, index int, ok bool) {
	if t == nil || !p.m.Contains(t) {
		return nil, -1, false
	}
	loc := p.locate(t, p.shown)
	return loc.path, loc.index, loc.visible
}

// locate resolves t's current display location against the given visibility set.
func (p *Projection) locate(t *model.Task, shown map[*model.Task]bool) location {
	parent := t.Parent()
	idx := -1
	if parent != nil {
		idx = parent.IndexOf(t)
	} else {
		for i, r := range p.m.Roots() {
			if r == t {
				idx = i
				break
			}
		}
	}
	return p.locateAt(parent, t, idx, t.Priority(), shown)
}

// locateAt computes a display location from model coordinates. Siblings before index are
// counted when visible (and, for grouped roots, when they share prio).
func (p *Projection) locateAt(parent, t *model.Task, index int, prio model.Priority, shown map[*model.Task]bool) location {
	if !shown[t] || index < 0 {
		return location{}
	}
	var chain []*model.Task
	for a := parent; a != nil; a = a.Parent() {
		chain = append([]*model.Task{a}, chain...)
	}
	path := []group.Node{p.root}
	if p.grouped {
		top := prio
		if len(chain) > 0 {
			top = chain[0].Priority()
		}
		g := p.priorityGroup(top)
		if g == nil {
			return location{}
		}
		path = append(path, g)
	}
	for _, a := range chain {
		if !shown[a] {
			return location{}
		}
		path = append(path, a)
	}

	var siblings []*model.Task
	if parent != nil {
		siblings = parent.Children()
	} else {
		siblings = p.m.Roots()
	}
	display := 0
	for i := 0; i < index && i < len(siblings); i++ {
		s := siblings[i]
		if s == t || !shown[s] {
			continue
		}
		if p.grouped && parent == nil && s.Priority() != prio {
			continue
		}
		display++
	}
	return location{path: path, index: display, visible: true}
}

func (p *Projection) priorityGroup(prio model.Priority) group.Node {
	for i := 0; i < p.root.Len(); i++ {
		n, err := p.root.Get(i)
		if err != nil {
			continue
		}
		if g, ok := n.(group.Group); ok {
			if gp, ok := group.PriorityOf(g); ok && gp == prio {
				return g
			}
		}
	}
	return nil
}

// othersFlipped reports whether any task outside subject's subtree changed visibility.
func othersFlipped(before, after map[*model.Task]bool, subject *model.Task) bool {
	differs := func(t *model.Task) bool {
		return t != subject && !subject.IsAncestorOf(t) && before[t] != after[t]
	}
	for t := range before {
		if differs(t) {
			return true
		}
	}
	for t := range after {
		if differs(t) {
			return true
		}
	}
	return false
}

func (p *Projection) emit(u Update) {
	if p.out != nil {
		p.out(u)
	}
}

func (p *Projection) emitAt(kind UpdateKind, loc location, node group.Node) {
	if !loc.visible {
		return
	}
	p.emit(Update{Kind: kind, Path: loc.path, Index: loc.index, Node: node})
}

func (p *Projection) structureChanged() {
	p.emit(Update{Kind: StructureChanged, Path: []group.Node{p.root}, Index: -1, Node: p.root})
}

// refresh recomputes visibility and reports whether the fine-grained update for subject is
// still meaningful. When it is not, consumers get a StructureChanged instead.
func (p *Projection) refresh(subject *model.Task) bool {
	before := p.shown
	p.shown = p.computeShown()
	if othersFlipped(before, p.shown, subject) {
		clear(p.pending)
		p.structureChanged()
		return false
	}
	return true
}

func (p *Projection) TaskPreDelete(e model.ChangeEvent) {
	p.pending[e.Task] = pending{loc: p.locateAt(e.Parent, e.Task, e.Index, e.Task.Priority(), p.shown)}
}

func (p *Projection) TaskPreChange(e model.ChangeEvent) {
	p.pending[e.Task] = pending{loc: p.locateAt(e.Parent, e.Task, e.Index, e.Task.Priority(), p.shown), change: true}
}

func (p *Projection) TaskDeleted(e model.ChangeEvent) {
	snap, ok := p.pending[e.Task]
	loc := snap.loc
	if !ok {
		loc = p.locateAt(e.Parent, e.Task, e.Index, e.Task.Priority(), p.shown)
	}
	if snap.change {
		// Relocation inside an edit: the paired TaskAdded re-anchors the snapshot.
		p.pending[e.Task] = pending{change: true}
	} else {
		delete(p.pending, e.Task)
	}
	if !p.refresh(e.Task) {
		return
	}
	p.emitAt(Removed, loc, e.Task)
}

func (p *Projection) TaskAdded(e model.ChangeEvent) {
	if !p.refresh(e.Task) {
		return
	}
	loc := p.locateAt(e.Parent, e.Task, e.Index, e.Task.Priority(), p.shown)
	if snap, ok := p.pending[e.Task]; ok && snap.change {
		p.pending[e.Task] = pending{loc: loc, change: true}
	}
	p.emitAt(Inserted, loc, e.Task)
}

func (p *Projection) TaskChanged(e model.ChangeEvent) {
	snap, ok := p.pending[e.Task]
	delete(p.pending, e.Task)
	if !p.refresh(e.Task) {
		return
	}
	now := p.locateAt(e.Parent, e.Task, e.Index, e.Task.Priority(), p.shown)
	if !ok {
		p.structureChanged()
		return
	}
	if snap.loc.same(now) {
		p.emitAt(Changed, now, e.Task)
		return
	}
	p.emitAt(Removed, snap.loc, e.Task)
	p.emitAt(Inserted, now, e.Task)
}
