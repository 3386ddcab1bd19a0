// Package tui is the interactive outline view: a bubbletea program over a tree.Projection.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"tasktree/internal/model"
	"tasktree/internal/settings"
	"tasktree/internal/store"
	"tasktree/internal/timer"
)

type Config struct {
	Store    store.Store
	Model    *model.Model
	Settings *settings.Settings
	Log      *log.Logger
	// ViewState restores the previous layout; nil loads it from Store.
	ViewState *store.ViewState
	// Interval is the timer tick; zero means timer.DefaultInterval.
	Interval time.Duration
}

// Run blocks until the user quits or ctx is cancelled, then saves the tasks and the layout.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Model == nil {
		return errors.New("tui: nil model")
	}
	applyColorProfilePreference()
	applyThemePreference()

	if cfg.ViewState == nil {
		st, err := cfg.Store.LoadViewState()
		if err != nil {
			return err
		}
		cfg.ViewState = st
	}

	app := newAppModel(ctx, cfg)
	defer app.proj.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	tracker := timer.New(cfg.Interval, func(t timer.Tick) { p.Send(tickMsg(t)) }, app.log)
	cfg.Model.SetTimeTracker(tracker)

	final, runErr := p.Run()
	tracker.StopAll()

	if fm, ok := final.(appModel); ok {
		app = fm
	}
	if err := cfg.Store.Save(context.WithoutCancel(ctx), cfg.Model); err != nil {
		return errors.Join(runErr, err)
	}
	if err := cfg.Store.SaveViewState(app.viewState()); err != nil {
		app.log.Warn("save view state", "err", err)
	}
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return runErr
}
