package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"tasktree/internal/settings"
)

const settingsFileName = "settings.json"

// ConfigDir is TASKTREE_CONFIG_DIR when set, else ~/.tasktree.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.tasktree).
	if v := strings.TrimSpace(os.Getenv("TASKTREE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tasktree"), nil
}

func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// LoadSettings reads settings.json. Comments and trailing commas are accepted; keys that are
// absent keep their defaults, and a missing file yields the defaults.
func LoadSettings() (settings.Values, error) {
	v := settings.Defaults()
	path, err := SettingsPath()
	if err != nil {
		return v, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return v, err
	}
	std, err := hujson.Standardize(b)
	if err != nil {
		return settings.Defaults(), fmt.Errorf("%s: invalid JSONC: %w", path, err)
	}
	if err := json.Unmarshal(std, &v); err != nil {
		return settings.Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// SaveSettings writes settings.json atomically, keeping the previous file as settings.json.bak.
func SaveSettings(v settings.Values) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	// Best effort: a failed backup must not block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomic.WriteFile(path+".bak", bytes.NewReader(prev))
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}
