package agent

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when resuming a session identifier
// that has no persisted transcript.
var ErrSessionNotFound = errors.New("session not found")

// CorruptSessionError is returned when a persisted transcript cannot be
// parsed into valid ordered turns (malformed JSON, sequence gap).
type CorruptSessionError struct {
	Path   string
	Reason string
}

func (e *CorruptSessionError) Error() string {
	return fmt.Sprintf("corrupt session file %s: %s", e.Path, e.Reason)
}

// StoreUnavailableError wraps failures from the long-term memory store.
// The session layer degrades on it (linear recording continues, recall
// is skipped for that turn) instead of aborting the session.
type StoreUnavailableError struct {
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("memory store unavailable: %v", e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Cause }

// PersonaError carries a persona handler failure (LLM API error,
// scrape failure, timeout) together with the persona that produced it.
// Dispatch does not retry; the presentation layer decides what to show.
type PersonaError struct {
	Persona string
	Cause   error
}

func (e *PersonaError) Error() string {
	return fmt.Sprintf("persona %q failed: %v", e.Persona, e.Cause)
}

func (e *PersonaError) Unwrap() error { return e.Cause }
