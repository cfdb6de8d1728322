package portfolio

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/domain"
)

func contextWithAlpha(scores map[string]float64) *agent.Context {
	ctx := agent.NewContext("2024-01-01T00:00:00Z")
	if scores != nil {
		ctx.MarketState["alpha"] = scores
	}
	return ctx
}

func TestExecute_NormalizesByAbsoluteSum(t *testing.T) {
	a := New(config.RiskConfig{}, 1.0, zerolog.Nop())
	ctx := contextWithAlpha(map[string]float64{
		"AAPL": 0.6,
		"MSFT": 0.2,
		"TSLA": -0.2,
	})

	ctx = a.Execute(ctx)

	payload, ok := ctx.SharedMemory[AgentName].(map[string]interface{})
	require.True(t, ok)
	weights, ok := payload["target_weights"].(map[string]float64)
	require.True(t, ok)

	assert.InDelta(t, 0.6, weights["AAPL"], 1e-9)
	assert.InDelta(t, 0.2, weights["MSFT"], 1e-9)
	assert.InDelta(t, -0.2, weights["TSLA"], 1e-9)

	// Absolute weights sum to one
	var gross float64
	for _, w := range weights {
		gross += math.Abs(w)
	}
	assert.InDelta(t, 1.0, gross, 1e-9)
}

func TestExecute_ZeroRawSumFallsBackToUniform(t *testing.T) {
	a := New(config.RiskConfig{}, 1.0, zerolog.Nop())
	ctx := contextWithAlpha(map[string]float64{
		"AAPL": 0.5,
		"TSLA": -0.5,
	})

	ctx = a.Execute(ctx)

	payload := ctx.SharedMemory[AgentName].(map[string]interface{})
	weights := payload["target_weights"].(map[string]float64)

	assert.Equal(t, 0.5, weights["AAPL"])
	assert.Equal(t, 0.5, weights["TSLA"])
}

func TestExecute_OrdersScaleWithGrossExposure(t *testing.T) {
	a := New(config.RiskConfig{}, 2.0, zerolog.Nop())
	ctx := contextWithAlpha(map[string]float64{
		"AAPL": 0.75,
		"TSLA": -0.25,
	})

	ctx = a.Execute(ctx)

	orders, ok := ctx.SharedMemory[OrdersKey].([]domain.Order)
	require.True(t, ok)
	require.Len(t, orders, 2)

	// Orders arrive in sorted symbol order
	assert.Equal(t, "AAPL", orders[0].Symbol)
	assert.Equal(t, domain.OrderSideBuy, orders[0].Side)
	assert.InDelta(t, 1.5, orders[0].Quantity, 1e-9)

	assert.Equal(t, "TSLA", orders[1].Symbol)
	assert.Equal(t, domain.OrderSideSell, orders[1].Side)
	assert.InDelta(t, -0.5, orders[1].Quantity, 1e-9)

	var grossQty float64
	for _, order := range orders {
		grossQty += math.Abs(order.Quantity)
	}
	assert.InDelta(t, 2.0, grossQty, 1e-9)
}

func TestExecute_NoAlphaRecordsWarning(t *testing.T) {
	a := New(config.RiskConfig{}, 1.0, zerolog.Nop())
	ctx := contextWithAlpha(nil)

	ctx = a.Execute(ctx)

	payload, ok := ctx.SharedMemory[AgentName].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "no alpha data", payload["warning"])

	_, hasOrders := ctx.SharedMemory[OrdersKey]
	assert.False(t, hasOrders)
}
