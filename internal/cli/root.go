package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"tasktree/internal/format"
	"tasktree/internal/model"
	"tasktree/internal/settings"
	"tasktree/internal/store"
	"tasktree/internal/tui"
)

type App struct {
	Dir        string
	Format     string
	PrettyJSON bool
	Verbose    bool

	Log *log.Logger
	// Prompter asks for input during interactive commands. nil uses a line editor on the
	// terminal, and no prompt at all when stdin is not a terminal.
	Prompter Prompter
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tasktree",
		Short:        "Hierarchical task manager (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tasktree

  # Scriptable commands
  tasktree add "Write release notes" --priority important --estimate 45m
  tasktree list --format text

  # Direct task lookup (shortcut for: tasktree show <task-id>)
  tasktree task-k3v9q2ma
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Log == nil {
			app.Log = newLogger(cmd.ErrOrStderr(), app.Verbose)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TASKTREE_DIR", ""), "Data directory (default: <config dir>/data)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKTREE_FORMAT", format.JSON), "Output format (json|text)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newUpCmd(app))
	cmd.AddCommand(newDownCmd(app))
	cmd.AddCommand(newCompleteCmd(app))
	cmd.AddCommand(newUncompleteCmd(app))
	cmd.AddCommand(newHighlightCmd(app))
	cmd.AddCommand(newTimeCmd(app))
	cmd.AddCommand(newTrackCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "tasktree", Level: log.WarnLevel})
	if verbose || debugEnabled() {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func debugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TASKTREE_DEBUG")))
	return v != "" && v != "0" && v != "false"
}

// session is the state one command works on: the loaded model and the user's settings.
type session struct {
	store    store.Store
	model    *model.Model
	settings *settings.Settings
}

func openSession(ctx context.Context, app *App) (*session, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = dir
	}
	logger := app.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := store.Store{Dir: dir, Log: logger, Journal: store.NewJournal(dir)}
	m, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	v, err := store.LoadSettings()
	if err != nil {
		return nil, err
	}
	m.AddChangeListener(newEventLogger(logger))
	m.AddChangeListener(s.Journal)
	return &session{store: s, model: m, settings: settings.New(v)}, nil
}

func (s *session) save(ctx context.Context) error {
	return s.store.Save(ctx, s.model)
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The TUI owns the terminal: log to a file, and only when debugging.
	logger := log.New(io.Discard)
	app.Log = logger
	sess, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if debugEnabled() {
		f, err := os.OpenFile(filepath.Join(sess.store.Dir, "tasktree.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			logger = log.NewWithOptions(f, log.Options{Prefix: "tasktree", Level: log.DebugLevel, ReportTimestamp: true})
			sess.store.Log = logger
		}
	}
	return tui.Run(cmd.Context(), tui.Config{
		Store:    sess.store,
		Model:    sess.model,
		Settings: sess.settings,
		Log:      logger,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
