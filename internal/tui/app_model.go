package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/log"

	"tasktree/internal/group"
	"tasktree/internal/model"
	"tasktree/internal/render"
	"tasktree/internal/settings"
	"tasktree/internal/store"
	"tasktree/internal/tree"
)

type appModel struct {
	ctx      context.Context
	store    store.Store
	tasks    *model.Model
	settings *settings.Settings
	log      *log.Logger

	proj *tree.Projection
	sync *projectionSync

	list      list.Model
	glyphs    render.Glyphs
	styles    render.Styles
	collapsed map[string]bool

	hideCompleted bool
	showDetail    bool

	width  int
	height int

	modal    modalKind
	modalFor *model.Task
	// addParent is where modalAddTask inserts; nil is the top level.
	addParent   *model.Task
	addPriority model.Priority
	input       textinput.Model

	flash    string
	flashErr bool
	flashSeq int

	unsavedTicks int
	saveErr      error
}

func newAppModel(ctx context.Context, cfg Config) appModel {
	logger := cfg.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := cfg.Settings
	if s == nil {
		s = settings.New(settings.Defaults())
	}
	g := render.GlyphsFromEnv()

	sync := &projectionSync{}
	proj := tree.New(cfg.Model, sync.observe)

	l := list.New(nil, newOutlineItemDelegate(s, g), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.CharLimit = 200

	m := appModel{
		ctx:       ctx,
		store:     cfg.Store,
		tasks:     cfg.Model,
		settings:  s,
		log:       logger,
		proj:      proj,
		sync:      sync,
		list:      l,
		glyphs:    g,
		styles:    render.NewStyles(nil),
		collapsed: map[string]bool{},
		input:     in,
	}

	selected := ""
	if st := cfg.ViewState; st != nil {
		m.hideCompleted = st.HideCompleted
		m.showDetail = st.ShowDetail
		for _, k := range st.Collapsed {
			m.collapsed[k] = true
		}
		selected = st.SelectedID
		proj.SetGrouped(st.Grouped)
		proj.SetFilter(m.filter())
	}
	m.refreshRows()
	if i := indexOfKey(m.list.Items(), selected); i >= 0 {
		m.list.Select(i)
	}

	// Rows are fresh; nothing is pending yet.
	sync.dirty = false
	sync.focus = nil
	return m
}

func (m appModel) filter() group.Filter {
	if m.hideCompleted {
		return group.Incomplete()
	}
	return nil
}

// refreshRows re-flattens the projection, keeping the selection on the same node when it is
// still visible, or moving it to the most recently inserted task.
func (m *appModel) refreshRows() {
	prev := ""
	if it, ok := m.list.SelectedItem().(rowItem); ok {
		prev = tree.Key(it.row.Node)
	}
	prevIdx := m.list.Index()

	if f := m.sync.focus; f != nil {
		expandTo(m.collapsed, f)
	}
	items := rowItems(m.proj.Flatten(m.collapsed))
	m.list.SetItems(items)

	idx := -1
	if f := m.sync.focus; f != nil {
		idx = indexOfKey(items, f.ID())
	}
	if idx < 0 {
		idx = indexOfKey(items, prev)
	}
	if idx < 0 {
		idx = min(prevIdx, len(items)-1)
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.sync.dirty = false
	m.sync.focus = nil
}

func (m appModel) selectedRow() (tree.Row, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return tree.Row{}, false
	}
	return it.row, true
}

func (m appModel) selectedTask() *model.Task {
	r, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return r.Task()
}

func (m appModel) viewState() *store.ViewState {
	st := &store.ViewState{
		Version:       1,
		Grouped:       m.proj.Grouped(),
		HideCompleted: m.hideCompleted,
		ShowDetail:    m.showDetail,
		Collapsed:     collapsedKeys(m.collapsed),
	}
	if t := m.selectedTask(); t != nil {
		st.SelectedID = t.ID()
	}
	return st
}
