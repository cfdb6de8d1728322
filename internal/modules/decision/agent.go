package decision

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/domain"
	"github.com/ovtrader/ov-trader/internal/llm"
)

// AgentName is the key this agent writes under in both shared memory and
// market state.
const AgentName = "llm_decision"

// DefaultTopN is the default number of top/bottom ranked signals rendered
// into the prompt.
const DefaultTopN = 5

// Agent synthesises quantitative and qualitative inputs into a single
// trading decision per cycle, via a model call with structured-output
// parsing and a deterministic fallback.
type Agent struct {
	client llm.Client
	opts   llm.Options
	topN   int
	log    zerolog.Logger
}

// New creates the decision agent. A nil client leaves the agent in
// not-configured mode; the fallback decision still fires when scores exist.
func New(client llm.Client, opts llm.Options, topN int, log zerolog.Logger) *Agent {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Agent{
		client: client,
		opts:   opts,
		topN:   topN,
		log:    log.With().Str("agent", AgentName).Logger(),
	}
}

// Name returns the agent name
func (a *Agent) Name() string {
	return AgentName
}

// Execute builds the synthesis prompt, invokes the model, and writes the
// authoritative decision into market state. Invocation and parse failures
// trigger the fallback; nothing here aborts the cycle.
func (a *Agent) Execute(ctx *agent.Context) *agent.Context {
	prompt := a.BuildPrompt(ctx)

	raw, err := a.invoke(prompt)
	if err != nil {
		a.log.Error().Err(err).Msg("Decision agent failed to query model")
		payload := map[string]interface{}{
			"prompt": prompt,
			"error":  err.Error(),
		}
		if fallback, ok := Fallback(ctx.Alpha()); ok {
			payload["fallback"] = fallback
			ctx.MarketState[AgentName] = fallback
		}
		ctx.SharedMemory[AgentName] = payload
		return ctx
	}

	parsed := ParseResponse(raw)
	payload := map[string]interface{}{
		"prompt":   prompt,
		"response": raw,
		"parsed":   parsed,
	}

	if parsed != nil {
		ctx.MarketState[AgentName] = parsed
	} else if fallback, ok := Fallback(ctx.Alpha()); ok {
		payload["fallback"] = fallback
		ctx.MarketState[AgentName] = fallback
	}

	ctx.SharedMemory[AgentName] = payload
	return ctx
}

func (a *Agent) invoke(prompt string) (string, error) {
	if a.client == nil {
		return "", llm.ErrNotConfigured
	}
	return a.client.Generate(context.Background(), prompt, a.opts)
}

// Fallback computes the deterministic rule-based decision from the score
// mapping. It returns false when no scores exist; in that case no decision
// is written at all.
func Fallback(scores map[string]float64) (domain.Decision, bool) {
	if len(scores) == 0 {
		return domain.Decision{}, false
	}

	symbol := argmaxAbs(scores)
	score := scores[symbol]

	action := domain.ActionHold
	if score > 0 {
		action = domain.ActionBuy
	} else if score < 0 {
		action = domain.ActionSell
	}

	confidence := int(math.Round(math.Abs(score) * 100))
	if confidence > 100 {
		confidence = 100
	}

	weight := score
	if weight > 1.0 {
		weight = 1.0
	} else if weight < -1.0 {
		weight = -1.0
	}

	return domain.Decision{
		Symbol:       symbol,
		Action:       action,
		Confidence:   confidence,
		TargetWeight: weight,
		Thesis:       "Fallback derived from quantitative alpha score in absence of LLM output.",
		RiskNotes:    "LLM reasoning unavailable; rely on systematic risk controls.",
		Analysis: []string{
			"Alpha score magnitude used as proxy for conviction.",
			"No qualitative news incorporated due to missing LLM response.",
		},
	}, true
}

// selectFocusSymbol picks the symbol for detailed narrative treatment:
// the largest-|score| symbol that also has a feature snapshot, else the
// largest-|score| symbol overall, else empty.
func selectFocusSymbol(scores map[string]float64, marketData map[string]domain.Snapshot) string {
	if len(scores) == 0 {
		return ""
	}

	withData := make(map[string]float64)
	for symbol, score := range scores {
		if _, ok := marketData[symbol]; ok {
			withData[symbol] = score
		}
	}
	if len(withData) > 0 {
		return argmaxAbs(withData)
	}

	return argmaxAbs(scores)
}

// argmaxAbs returns the symbol with the largest absolute score; ties break
// alphabetically so selection stays deterministic.
func argmaxAbs(scores map[string]float64) string {
	symbols := make([]string, 0, len(scores))
	for symbol := range scores {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	best := symbols[0]
	for _, symbol := range symbols[1:] {
		if math.Abs(scores[symbol]) > math.Abs(scores[best]) {
			best = symbol
		}
	}
	return best
}

// newsSummary extracts the qualitative summary left by the news agent,
// if any. Only a non-marker string payload counts.
func newsSummary(ctx *agent.Context) string {
	raw, ok := ctx.SharedMemory["news_sentiment"]
	if !ok {
		return ""
	}
	summary, ok := raw.(string)
	if !ok || summary == "" || summary == agent.NotConfiguredMarker {
		return ""
	}
	return summary
}
