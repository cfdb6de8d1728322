package execution

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/domain"
	"github.com/ovtrader/ov-trader/internal/modules/portfolio"
)

// AgentName is the shared-memory key this agent writes under
const AgentName = "execution"

// ErrNotInstalled is reported when no execution bridge has been configured
var ErrNotInstalled = errors.New("execution bridge not installed")

// Bridge is the opaque brokerage execution capability. Implementations
// establish their connection lazily on first use.
type Bridge interface {
	Submit(order domain.Order) (map[string]interface{}, error)
}

// Agent submits portfolio orders through the execution bridge
type Agent struct {
	bridge Bridge
	log    zerolog.Logger
}

// New creates the execution agent. A nil bridge records ErrNotInstalled
// at execution time instead of failing construction.
func New(bridge Bridge, log zerolog.Logger) *Agent {
	return &Agent{
		bridge: bridge,
		log:    log.With().Str("agent", AgentName).Logger(),
	}
}

// Name returns the agent name
func (a *Agent) Name() string {
	return AgentName
}

// Execute submits the cycle's order intents. Any bridge failure aborts the
// batch and is recorded into shared memory; the cycle itself continues.
func (a *Agent) Execute(ctx *agent.Context) *agent.Context {
	raw, ok := ctx.SharedMemory[portfolio.OrdersKey]
	if !ok {
		a.log.Info().Msg("No orders to execute")
		return ctx
	}

	orders, ok := raw.([]domain.Order)
	if !ok || len(orders) == 0 {
		a.log.Info().Msg("No orders to execute")
		return ctx
	}

	if a.bridge == nil {
		ctx.SharedMemory[AgentName] = map[string]interface{}{
			"error": ErrNotInstalled.Error(),
		}
		return ctx
	}

	results := make([]map[string]interface{}, 0, len(orders))
	for _, order := range orders {
		a.log.Info().
			Str("side", string(order.Side)).
			Str("symbol", order.Symbol).
			Float64("quantity", order.Quantity).
			Msg("Executing order")

		result, err := a.bridge.Submit(order)
		if err != nil {
			a.log.Error().Err(err).Str("symbol", order.Symbol).Msg("Order execution failed")
			ctx.SharedMemory[AgentName] = map[string]interface{}{
				"error": err.Error(),
			}
			return ctx
		}
		results = append(results, result)
	}

	ctx.SharedMemory[AgentName] = results
	return ctx
}
