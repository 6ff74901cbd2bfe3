// Package llm is the boundary to the language-model API. Personas
// depend on the Completer interface; the Anthropic implementation
// lives in client.go and a static test double in static.go.
package llm

import (
	"context"

	"github.com/simplcli/dobby/internal/agent"
)

// Message is one prior exchange threaded into a completion.
type Message struct {
	Role agent.Role
	Text string
}

// Request describes one completion call.
type Request struct {
	// System is the system prompt; empty means none.
	System string

	// History is the prior conversation, oldest first.
	History []Message

	// Prompt is the final user message.
	Prompt string

	// Temperature in [0,1]; zero means the provider default.
	Temperature float64
}

// Completer answers a prompt given context. Failures surface to the
// dispatcher, which wraps them as persona errors; retry policy, if
// any, belongs to the provider client, not to the core.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
