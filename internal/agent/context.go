package agent

import "github.com/ovtrader/ov-trader/internal/domain"

// Context is the shared record passed through the agent pipeline during a
// decision cycle. It is owned by a single orchestrator invocation for the
// cycle's duration and never shared across cycles, so no locking is needed.
type Context struct {
	// Timestamp is assigned once at cycle start, before the first agent
	// runs, and never overwritten.
	Timestamp string

	// MarketState holds structured market values keyed by well-known
	// names: ranked signal scores under "alpha", per-symbol feature
	// snapshots under "market_data", the synthesized decision under
	// "llm_decision".
	MarketState map[string]interface{}

	// SharedMemory holds each agent's raw output keyed by agent name.
	SharedMemory map[string]interface{}
}

// NewContext creates an empty cycle context with the given timestamp
func NewContext(timestamp string) *Context {
	return &Context{
		Timestamp:    timestamp,
		MarketState:  make(map[string]interface{}),
		SharedMemory: make(map[string]interface{}),
	}
}

// Alpha returns the ranked signal scores, or nil when not populated
func (c *Context) Alpha() map[string]float64 {
	raw, ok := c.MarketState["alpha"]
	if !ok {
		return nil
	}

	switch scores := raw.(type) {
	case map[string]float64:
		return scores
	case map[string]interface{}:
		converted := make(map[string]float64, len(scores))
		for symbol, value := range scores {
			if f, ok := value.(float64); ok {
				converted[symbol] = f
			}
		}
		return converted
	default:
		return nil
	}
}

// MarketData returns the per-symbol feature snapshots, or nil
func (c *Context) MarketData() map[string]domain.Snapshot {
	raw, ok := c.MarketState["market_data"]
	if !ok {
		return nil
	}
	data, ok := raw.(map[string]domain.Snapshot)
	if !ok {
		return nil
	}
	return data
}
