// Package persona holds the specialist handlers and the dispatcher
// that hands a routed request to one of them. Handlers receive the
// user text plus whatever conversational context and recalled memory
// the session manager produced; they never touch the session state
// themselves.
package persona

import (
	"context"
	"fmt"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/memory"
)

// Request is everything a handler gets for one exchange.
type Request struct {
	// Text is the raw user input.
	Text string

	// Mode is the memory mode of the active session.
	Mode agent.MemoryMode

	// Context is the recent transcript, oldest first, already capped
	// by the dispatcher.
	Context []agent.Turn

	// Memory holds cross-session records recalled for this input,
	// most similar first. Empty in linear mode.
	Memory []memory.Record
}

// Handler produces a response for one request.
type Handler interface {
	Handle(ctx context.Context, req Request) (*agent.Response, error)
}

// Registry maps persona IDs to handlers, preserving registration
// order. It is assembled once at startup before the router and the
// dispatcher are built, and never mutated after.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under id. Duplicate ids are a programming
// error.
func (r *Registry) Register(id string, h Handler) error {
	if id == "" {
		return fmt.Errorf("persona id must not be empty")
	}
	if _, exists := r.handlers[id]; exists {
		return fmt.Errorf("persona %q already registered", id)
	}
	r.handlers[id] = h
	r.order = append(r.order, id)
	return nil
}

// Get returns the handler for id, or false when none is registered.
func (r *Registry) Get(id string) (Handler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}

// IDs returns all registered persona ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
