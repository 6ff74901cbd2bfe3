package persona

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/memory"
	"github.com/simplcli/dobby/internal/router"
)

// DispatchConfig bounds a single dispatch.
type DispatchConfig struct {
	// Timeout applies to the whole handler call, LLM round-trips
	// included.
	Timeout time.Duration

	// ContextTurns caps how much transcript a handler sees.
	ContextTurns int
}

// Dispatcher resolves a routing decision to a handler and runs it.
type Dispatcher struct {
	registry *Registry
	cfg      DispatchConfig
	log      *zap.Logger
}

// NewDispatcher wires the dispatcher over an assembled registry.
func NewDispatcher(registry *Registry, cfg DispatchConfig, log *zap.Logger) *Dispatcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.ContextTurns == 0 {
		cfg.ContextTurns = 20
	}
	return &Dispatcher{registry: registry, cfg: cfg, log: log.Named("persona")}
}

// Dispatch runs the decided persona's handler. Any failure comes back
// as a PersonaError; the caller decides whether to record the
// exchange. There is no retry and no fallback to another persona
// here, the routing already happened.
func (d *Dispatcher) Dispatch(ctx context.Context, decision router.Decision, text string, mode agent.MemoryMode, turns []agent.Turn, recalled []memory.Record) (*agent.Response, error) {
	handler, ok := d.registry.Get(decision.Persona)
	if !ok {
		return nil, &agent.PersonaError{
			Persona: decision.Persona,
			Cause:   errUnknownPersona(decision.Persona),
		}
	}

	if len(turns) > d.cfg.ContextTurns {
		turns = turns[len(turns)-d.cfg.ContextTurns:]
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := handler.Handle(ctx, Request{
		Text:    text,
		Mode:    mode,
		Context: turns,
		Memory:  recalled,
	})
	if err != nil {
		d.log.Warn("handler failed",
			zap.String("persona", decision.Persona),
			zap.Error(err))
		return nil, &agent.PersonaError{Persona: decision.Persona, Cause: err}
	}

	d.log.Debug("dispatched",
		zap.String("persona", decision.Persona),
		zap.Float64("confidence", decision.Confidence),
		zap.Bool("fallback", decision.Fallback),
		zap.Duration("took", time.Since(start)))
	return resp, nil
}

type errUnknownPersona string

func (e errUnknownPersona) Error() string {
	return "no handler registered for persona " + string(e)
}
