// Dobby is a persona-routing agent CLI: it classifies each message to
// a specialist persona, keeps an ordered per-session transcript, and
// in cross-time mode mirrors the conversation into a local vector
// store for recall across sessions.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes. Startup failures get their own code so wrappers can
// tell a missing credential from a mid-session crash.
const (
	exitOK      = 0
	exitRuntime = 1
	exitStartup = 2
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dobby:", err)
		var serr *startupError
		if errors.As(err, &serr) {
			os.Exit(exitStartup)
		}
		os.Exit(exitRuntime)
	}
	os.Exit(exitOK)
}

// startupError marks failures before the session loop began, such as
// unreadable config or a missing API key.
type startupError struct {
	cause error
}

func (e *startupError) Error() string { return e.cause.Error() }
func (e *startupError) Unwrap() error { return e.cause }
