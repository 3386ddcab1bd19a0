package cli

import (
	"errors"
	"fmt"
	"strings"
)

var errTrackingDisabled = errors.New("time tracking is disabled; run `tasktree settings set enableActualTime on`")

type ambiguousError struct {
	ref     string
	matches []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("ambiguous task reference %q: matches %s", e.ref, strings.Join(e.matches, ", "))
}

func errAmbiguous(ref string, matches []string) error {
	if len(matches) > 5 {
		matches = append(matches[:5:5], "...")
	}
	return ambiguousError{ref: ref, matches: matches}
}
