package agent

import (
	"time"

	"github.com/rs/zerolog"
)

// Orchestrator executes a fixed sequence of agents once per cycle,
// threading the shared context through them in declaration order. There is
// no branching and no retry logic at this layer: each agent is responsible
// for capturing its own failures.
type Orchestrator struct {
	agents []Agent
	log    zerolog.Logger
}

// NewOrchestrator creates an orchestrator over the given agent sequence
func NewOrchestrator(agents []Agent, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		agents: agents,
		log:    log.With().Str("component", "orchestrator").Logger(),
	}
}

// RunCycle builds a fresh context and runs every agent against it in order.
// The context timestamp is assigned before the first agent executes.
func (o *Orchestrator) RunCycle() *Context {
	ctx := NewContext(time.Now().UTC().Format(time.RFC3339))

	for _, a := range o.agents {
		o.log.Info().Str("agent", a.Name()).Msg("Running agent")
		ctx = a.Execute(ctx)
	}

	return ctx
}
