package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads one line of input after showing label.
type Prompter interface {
	Prompt(label string) (string, error)
}

type linerPrompter struct{}

func (linerPrompter) Prompt(label string) (string, error) {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	line, err := l.Prompt(label)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", errPromptAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var errPromptAborted = errors.New("prompt aborted")

// prompter returns the injected Prompter, the line editor when stdin is a terminal, or nil.
func (app *App) prompter() Prompter {
	if app.Prompter != nil {
		return app.Prompter
	}
	if !liner.TerminalSupported() || !stdinIsTerminal() {
		return nil
	}
	return linerPrompter{}
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
