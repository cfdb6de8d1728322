package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/llm"
)

// NotConfiguredMarker is recorded into shared memory when a model-backed
// agent has no usable model backend.
const NotConfiguredMarker = "LLM integration not configured."

// Agent is a single stage of the decision pipeline. Execute mutates the
// shared context and returns it. Agents capture their own failures into the
// context; they never abort the pipeline.
type Agent interface {
	Name() string
	Execute(ctx *Context) *Context
}

// PromptBuilder builds a model prompt from the current cycle context
type PromptBuilder interface {
	BuildPrompt(ctx *Context) string
}

// ModelBacked provides the shared execution behaviour for agents that call
// out to a large language model. It composes with a PromptBuilder instead of
// relying on inheritance: embed it, give it a name and a prompt source, and
// it handles invocation and failure capture.
type ModelBacked struct {
	name    string
	client  llm.Client
	prompts PromptBuilder
	opts    llm.Options
	log     zerolog.Logger
}

// NewModelBacked creates a model-backed agent helper. A nil client means
// the backend is not configured; Execute records the marker string instead
// of failing.
func NewModelBacked(name string, client llm.Client, prompts PromptBuilder, opts llm.Options, log zerolog.Logger) *ModelBacked {
	return &ModelBacked{
		name:    name,
		client:  client,
		prompts: prompts,
		opts:    opts,
		log:     log.With().Str("agent", name).Logger(),
	}
}

// Name returns the agent name
func (m *ModelBacked) Name() string {
	return m.name
}

// Invoke calls the configured model with the given prompt
func (m *ModelBacked) Invoke(prompt string) (string, error) {
	if m.client == nil {
		return "", llm.ErrNotConfigured
	}
	return m.client.Generate(context.Background(), prompt, m.opts)
}

// Execute builds a prompt, invokes the model, and records the outcome into
// shared memory under the agent's name. Model failures are captured, never
// propagated: a missing backend records the literal not-configured marker,
// any other failure records a diagnostic string with the reason.
func (m *ModelBacked) Execute(ctx *Context) *Context {
	prompt := m.prompts.BuildPrompt(ctx)

	response, err := m.Invoke(prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			ctx.SharedMemory[m.name] = NotConfiguredMarker
			return ctx
		}
		m.log.Error().Err(err).Msg("Model invocation failed")
		ctx.SharedMemory[m.name] = fmt.Sprintf("model invocation failed: %s", err)
		return ctx
	}

	ctx.SharedMemory[m.name] = response
	return ctx
}
