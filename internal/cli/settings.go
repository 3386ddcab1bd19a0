package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasktree/internal/settings"
	"tasktree/internal/store"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newSettingsShowCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := store.LoadSettings()
			if err != nil {
				return writeErr(cmd, err)
			}
			s := settings.New(v)
			path, _ := store.SettingsPath()
			return writeOut(cmd, app, ok(map[string]any{"path": path, "settings": v}, settingsText(s)))
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <on|off>",
		Short: "Change a setting",
		Example: `  tasktree settings set propagatePriority on
  tasktree settings set ask-actual-when-complete-task yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := store.LoadSettings()
			if err != nil {
				return writeErr(cmd, err)
			}
			s := settings.New(v)
			var changed []settings.Change
			remove := s.Observe(func(c settings.Change) {
				app.Log.Debug("setting changed", "name", c.Name, "old", c.Old, "new", c.New)
				changed = append(changed, c)
			})
			defer remove()

			if err := s.SetString(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if len(changed) > 0 {
				if err := store.SaveSettings(s.Values()); err != nil {
					return writeErr(cmd, err)
				}
			}
			data := map[string]any{"settings": s.Values(), "changed": len(changed) > 0}
			return writeOut(cmd, app, ok(data, settingsText(s)))
		},
	}
}

func settingsText(s *settings.Settings) string {
	var b strings.Builder
	for _, name := range settings.Names() {
		v, _ := s.Get(name)
		state := "off"
		if v {
			state = "on"
		}
		fmt.Fprintf(&b, "%-32s %s\n", name, state)
	}
	return b.String()
}
