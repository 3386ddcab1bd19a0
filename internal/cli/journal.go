package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasktree/internal/store"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the change journal",
		Long:  "Lists the most recent task changes recorded in events.jsonl, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := dataStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			events, err := s.ReadJournal(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			var b strings.Builder
			for _, e := range events {
				fmt.Fprintf(&b, "%s  %-7s  %s  %s\n", e.At.Local().Format("2006-01-02 15:04:05"), e.Kind, e.TaskID, e.Title)
			}
			return writeOut(cmd, app, ok(events, b.String()))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Show at most this many entries (0 for all)")
	return cmd
}

var errDoctorFoundErrors = errors.New("doctor found errors")

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check stored tasks for problems",
		Long:  "Checks the task database and the change journal for broken parent links, cycles, duplicate ids and invalid values. Exits non-zero when an error-level issue is found.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := dataStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rep := s.Doctor(cmd.Context())
			var b strings.Builder
			fmt.Fprintf(&b, "%d tasks, %d issues\n", rep.Tasks, len(rep.Issues))
			for _, it := range rep.Issues {
				loc := it.TaskID
				if it.Line > 0 {
					loc = fmt.Sprintf("%s:%d", it.Path, it.Line)
				}
				fmt.Fprintf(&b, "%-5s %s %s: %s\n", it.Level, it.Code, loc, it.Message)
			}
			if err := writeOut(cmd, app, ok(rep, b.String())); err != nil {
				return err
			}
			if rep.HasErrors() {
				return errDoctorFoundErrors
			}
			return nil
		},
	}
}

// dataStore opens the store without loading the model.
func dataStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
	}
	return store.Store{Dir: dir, Log: app.Log}, nil
}
