package cli

import (
	"github.com/charmbracelet/log"

	"tasktree/internal/model"
)

// newEventLogger traces every model change at debug level.
func newEventLogger(l *log.Logger) model.Listener {
	return model.KindFunc(func(kind model.EventKind, e model.ChangeEvent) {
		parent := ""
		if e.Parent != nil {
			parent = e.Parent.ID()
		}
		l.Debug("task event", "kind", kind, "task", e.Task.ID(), "parent", parent, "index", e.Index)
	})
}
