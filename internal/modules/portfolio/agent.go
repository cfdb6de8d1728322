package portfolio

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/domain"
)

// AgentName is the shared-memory key this agent writes under
const AgentName = "portfolio"

// OrdersKey is the shared-memory key holding the generated order intents
const OrdersKey = "portfolio_orders"

// Agent converts ranked alpha scores into normalized target weights and
// order intents.
type Agent struct {
	risk                config.RiskConfig
	targetGrossExposure float64
	log                 zerolog.Logger
}

// New creates the portfolio construction agent
func New(risk config.RiskConfig, targetGrossExposure float64, log zerolog.Logger) *Agent {
	if targetGrossExposure == 0 {
		targetGrossExposure = 1.0
	}
	return &Agent{
		risk:                risk,
		targetGrossExposure: targetGrossExposure,
		log:                 log.With().Str("agent", AgentName).Logger(),
	}
}

// Name returns the agent name
func (a *Agent) Name() string {
	return AgentName
}

// Execute normalizes scores into weights and emits one order per symbol.
// Weights are score / sum(|score|); when the raw score sum is exactly zero
// the weights are uniform instead. The raw-sum zero check (rather than the
// absolute-sum denominator) is a preserved compatibility quirk.
func (a *Agent) Execute(ctx *agent.Context) *agent.Context {
	alpha := ctx.Alpha()
	if len(alpha) == 0 {
		a.log.Warn().Msg("No alpha data; skipping portfolio construction")
		ctx.SharedMemory[AgentName] = map[string]interface{}{
			"warning": "no alpha data",
		}
		return ctx
	}

	symbols := make([]string, 0, len(alpha))
	var rawSum, absSum float64
	for symbol, score := range alpha {
		symbols = append(symbols, symbol)
		rawSum += score
		if score < 0 {
			absSum -= score
		} else {
			absSum += score
		}
	}
	sort.Strings(symbols)

	weights := make(map[string]float64, len(alpha))
	if rawSum == 0 {
		uniform := 1.0 / float64(len(alpha))
		for _, symbol := range symbols {
			weights[symbol] = uniform
		}
	} else {
		for _, symbol := range symbols {
			weights[symbol] = alpha[symbol] / absSum
		}
	}

	orders := make([]domain.Order, 0, len(symbols))
	for _, symbol := range symbols {
		weight := weights[symbol]
		side := domain.OrderSideBuy
		if weight < 0 {
			side = domain.OrderSideSell
		}
		orders = append(orders, domain.NewMarketOrder(symbol, weight*a.targetGrossExposure, side))
	}

	ctx.SharedMemory[OrdersKey] = orders
	ctx.SharedMemory[AgentName] = map[string]interface{}{
		"target_weights": weights,
	}

	a.log.Info().
		Int("orders", len(orders)).
		Float64("gross_exposure", a.targetGrossExposure).
		Msg("Portfolio orders generated")

	return ctx
}
