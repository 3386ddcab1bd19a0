package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tasktree/internal/model"
	"tasktree/internal/render"
	"tasktree/internal/timer"
)

func newTimeCmd(app *App) *cobra.Command {
	var set int64
	var add int64

	cmd := &cobra.Command{
		Use:   "time <task>",
		Short: "Set or add to a task's recorded actual time",
		Example: `  tasktree time task-k3v9q2ma --set 1h15m
  tasktree time task-k3v9q2ma --add 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			if flags.Changed("set") == flags.Changed("add") {
				return writeErr(cmd, fmt.Errorf("exactly one of --set or --add is required: %w", model.ErrInvalidArgument))
			}
			actual := set
			if flags.Changed("add") {
				actual = t.StoredActualTime() + add
			}
			if err := sess.model.UpdateActualTime(t, actual); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			text := fmt.Sprintf("%s actual time %s", t.ID(), render.FormatDuration(t.ActualTime()))
			return writeOut(cmd, app, ok(newTaskView(t, sess.settings, 0), text))
		},
	}

	cmd.Flags().Var(newDurationValue(&set), "set", "Replace the recorded time")
	cmd.Flags().Var(newDurationValue(&add), "add", "Add to the recorded time")
	return cmd
}

func newTrackCmd(app *App) *cobra.Command {
	var limit time.Duration
	var interval time.Duration
	var saveEvery time.Duration

	cmd := &cobra.Command{
		Use:   "track <task>",
		Short: "Run a foreground timer on a task until interrupted (or --for elapses)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(sess.model, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !sess.settings.EnableActualTime() {
				return writeErr(cmd, errTrackingDisabled)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}

			ticks := make(chan timer.Tick, 16)
			tracker := timer.New(interval, func(tick timer.Tick) {
				select {
				case ticks <- tick:
				case <-ctx.Done():
				}
			}, app.Log)
			defer tracker.StopAll()
			sess.model.SetTimeTracker(tracker)

			before := t.StoredActualTime()
			if err := sess.model.StartTask(t); err != nil {
				return writeErr(cmd, err)
			}
			app.Log.Debug("tracking", "task", t.ID(), "limit", limit)

			if saveEvery <= 0 {
				saveEvery = time.Minute
			}
			flush := time.NewTicker(saveEvery)
			defer flush.Stop()
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case tick := <-ticks:
					if err := timer.Apply(sess.model, tick); err != nil {
						return writeErr(cmd, err)
					}
				case <-flush.C:
					if err := sess.save(context.WithoutCancel(ctx)); err != nil {
						app.Log.Warn("periodic save failed", "err", err)
					}
				}
			}

			if err := sess.model.StopTask(t); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(context.WithoutCancel(ctx)); err != nil {
				return writeErr(cmd, err)
			}
			tracked := t.StoredActualTime() - before
			data := map[string]any{"id": t.ID(), "tracked": tracked, "actualTime": t.ActualTime()}
			text := fmt.Sprintf("tracked %s on %s (total %s)", render.FormatDuration(tracked), t.ID(), render.FormatDuration(t.ActualTime()))
			return writeOut(cmd, app, ok(data, text))
		},
	}

	cmd.Flags().DurationVar(&limit, "for", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", timer.DefaultInterval, "Tick interval")
	cmd.Flags().DurationVar(&saveEvery, "save-every", time.Minute, "Persist progress this often")
	_ = cmd.Flags().MarkHidden("interval")
	return cmd
}
