package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	// Sample standard deviation of {2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.138, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	assert.Nil(t, CalculateReturns([]float64{100}))
}

func TestCalculateReturns_ZeroPriceGuard(t *testing.T) {
	returns := CalculateReturns([]float64{0, 100})
	require.Len(t, returns, 1)
	assert.Equal(t, 0.0, returns[0])
}

func TestAnnualizedReturn(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedReturn(nil))

	// A constant small daily gain over a full trading year
	daily := make([]float64, 252)
	for i := range daily {
		daily[i] = 0.001
	}
	expected := math.Pow(1.001, 252) - 1
	assert.InDelta(t, expected, AnnualizedReturn(daily), 1e-9)
}

func TestAnnualizedVolatility(t *testing.T) {
	daily := []float64{0.01, -0.01, 0.02, -0.02, 0.01}
	expected := StdDev(daily) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(daily), 1e-12)
}

func TestSharpeRatio(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		assert.Nil(t, SharpeRatio(nil, 0))
		assert.Nil(t, SharpeRatio([]float64{0.01}, 0))
	})

	t.Run("zero dispersion", func(t *testing.T) {
		assert.Nil(t, SharpeRatio([]float64{0.01, 0.01, 0.01}, 0))
	})

	t.Run("positive drift", func(t *testing.T) {
		returns := []float64{0.01, 0.02, 0.015, 0.005, 0.012}
		sharpe := SharpeRatio(returns, 0)
		require.NotNil(t, sharpe)
		assert.Greater(t, *sharpe, 0.0)
	})

	t.Run("risk free rate reduces the ratio", func(t *testing.T) {
		returns := []float64{0.01, 0.02, 0.015, 0.005, 0.012}
		base := SharpeRatio(returns, 0)
		adjusted := SharpeRatio(returns, 0.05)
		require.NotNil(t, base)
		require.NotNil(t, adjusted)
		assert.Less(t, *adjusted, *base)
	})
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100}))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}))

	// Peak 120, trough 90: 25% drawdown
	assert.InDelta(t, 0.25, MaxDrawdown([]float64{100, 120, 90, 110}), 1e-9)

	// Later deeper drawdown wins
	assert.InDelta(t, 0.5, MaxDrawdown([]float64{100, 120, 100, 200, 100}), 1e-9)
}
