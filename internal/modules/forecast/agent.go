package forecast

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/domain"
	"github.com/ovtrader/ov-trader/internal/signals"
)

// AgentName is the shared-memory key this agent writes under
const AgentName = "forecast"

// snapshotLimit caps how many top-ranked symbols get feature snapshots
const snapshotLimit = 5

// Agent queries the quantitative signal source and populates the cycle
// context with ranked scores and per-symbol feature snapshots.
type Agent struct {
	source   signals.Source
	universe []string
	log      zerolog.Logger
}

// New creates the forecast agent. A nil source means the signal platform
// is not installed; Execute records the condition and skips population.
func New(source signals.Source, universe []string, log zerolog.Logger) *Agent {
	return &Agent{
		source:   source,
		universe: universe,
		log:      log.With().Str("agent", AgentName).Logger(),
	}
}

// Name returns the agent name
func (a *Agent) Name() string {
	return AgentName
}

// Execute computes scores and snapshots. Failures are captured into shared
// memory; the pipeline continues without alpha data.
func (a *Agent) Execute(ctx *agent.Context) *agent.Context {
	if a.source == nil {
		ctx.SharedMemory[AgentName] = map[string]interface{}{
			"error": "signal source not installed; forecasting skipped",
		}
		return ctx
	}

	scores, err := a.source.ComputeScores(a.universe)
	if err != nil {
		a.log.Error().Err(err).Msg("Signal source query failed")
		ctx.SharedMemory[AgentName] = map[string]interface{}{
			"error": err.Error(),
		}
		return ctx
	}

	top := topRanked(scores, snapshotLimit)
	snapshots := a.source.FeatureSnapshots(top)

	ctx.SharedMemory[AgentName] = map[string]interface{}{
		"scores": scores,
		"metadata": map[string]interface{}{
			"universe_size": len(scores),
			"snapshots":     len(snapshots),
		},
	}

	if _, exists := ctx.MarketState["alpha"]; !exists {
		ctx.MarketState["alpha"] = scores
	}

	if len(snapshots) > 0 {
		marketData, ok := ctx.MarketState["market_data"].(map[string]domain.Snapshot)
		if !ok {
			marketData = make(map[string]domain.Snapshot, len(snapshots))
			ctx.MarketState["market_data"] = marketData
		}
		for symbol, snapshot := range snapshots {
			marketData[symbol] = snapshot
		}
	}

	return ctx
}

// topRanked returns up to limit symbols ordered by descending signed score
func topRanked(scores map[string]float64, limit int) []string {
	symbols := make([]string, 0, len(scores))
	for symbol := range scores {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if scores[symbols[i]] != scores[symbols[j]] {
			return scores[symbols[i]] > scores[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})

	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return symbols
}
