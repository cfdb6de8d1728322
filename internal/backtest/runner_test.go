package backtest

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/signals"
)

type fixedSource struct {
	scores map[string]float64
	prices map[string][]float64
}

func (s fixedSource) ComputeScores(_ []string) (map[string]float64, error) {
	return s.scores, nil
}

func (s fixedSource) PriceHistory(symbol string) []float64 {
	return s.prices[symbol]
}

func testConfig(cash float64) (config.SignalSourceConfig, config.BacktestConfig) {
	return config.SignalSourceConfig{Instruments: []string{"AAA", "BBB"}},
		config.BacktestConfig{Cash: cash, Benchmark: "SPY"}
}

func TestRun_NilSourceFails(t *testing.T) {
	signalCfg, btCfg := testConfig(1000)
	runner := NewRunner(signalCfg, btCfg, nil, zerolog.Nop())

	_, err := runner.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, signals.ErrUnavailable))
}

func TestRun_WalksWalletThroughReturns(t *testing.T) {
	source := fixedSource{
		scores: map[string]float64{"AAA": 0.6, "BBB": 0.2},
		prices: map[string][]float64{
			"AAA": {100, 110, 121},
			"BBB": {50, 50, 50},
		},
	}
	signalCfg, btCfg := testConfig(1000)
	runner := NewRunner(signalCfg, btCfg, source, zerolog.Nop())

	result, err := runner.Run()
	require.NoError(t, err)

	// Weights: 0.75 in AAA, 0.25 in BBB. AAA gains 10% per period, BBB
	// is flat, so the portfolio compounds 7.5% twice.
	weights := result.Report["weights"].(map[string]float64)
	assert.InDelta(t, 0.75, weights["AAA"], 1e-9)
	assert.InDelta(t, 0.25, weights["BBB"], 1e-9)

	final := result.Report["final_balance"].(float64)
	assert.InDelta(t, 1000*1.075*1.075, final, 1e-6)

	assert.Equal(t, 2, result.Analysis["periods"])
	assert.InDelta(t, final/1000-1, result.Analysis["total_return"].(float64), 1e-9)
	assert.Equal(t, "SPY", result.Report["benchmark"])
	assert.Contains(t, result.Report["summary"], "Virtual wallet gained")
}

func TestRun_AllNegativeScoresFallBackToUniform(t *testing.T) {
	source := fixedSource{
		scores: map[string]float64{"AAA": -0.3, "BBB": -0.1},
		prices: map[string][]float64{
			"AAA": {100, 101, 102},
			"BBB": {50, 51, 52},
		},
	}
	signalCfg, btCfg := testConfig(1000)
	runner := NewRunner(signalCfg, btCfg, source, zerolog.Nop())

	result, err := runner.Run()
	require.NoError(t, err)

	weights := result.Report["weights"].(map[string]float64)
	assert.Equal(t, 0.5, weights["AAA"])
	assert.Equal(t, 0.5, weights["BBB"])
}

func TestRun_InsufficientHistoryFails(t *testing.T) {
	source := fixedSource{
		scores: map[string]float64{"AAA": 0.5},
		prices: map[string][]float64{"AAA": {100}},
	}
	signalCfg, btCfg := testConfig(1000)
	runner := NewRunner(signalCfg, btCfg, source, zerolog.Nop())

	_, err := runner.Run()
	assert.Error(t, err)
}

func TestRun_SyntheticSourceEndToEnd(t *testing.T) {
	source := signals.NewSyntheticSource(90, 42)
	signalCfg := config.SignalSourceConfig{Instruments: []string{"SP500"}}
	btCfg := config.BacktestConfig{Cash: 1_000_000, Benchmark: "SPY"}
	runner := NewRunner(signalCfg, btCfg, source, zerolog.Nop())

	result, err := runner.Run()
	require.NoError(t, err)

	assert.Greater(t, result.Report["final_balance"].(float64), 0.0)
	assert.Contains(t, result.Analysis, "annualized_return")
	assert.Contains(t, result.Analysis, "annualized_volatility")
	assert.Contains(t, result.Analysis, "max_drawdown")
}

func TestUniverse_IndexShorthandExpandsToDefault(t *testing.T) {
	runner := NewRunner(config.SignalSourceConfig{Instruments: []string{"SP500"}}, config.BacktestConfig{}, nil, zerolog.Nop())
	assert.Nil(t, runner.universe())

	runner = NewRunner(config.SignalSourceConfig{Instruments: []string{"AAPL", "MSFT"}}, config.BacktestConfig{}, nil, zerolog.Nop())
	assert.Equal(t, []string{"AAPL", "MSFT"}, runner.universe())
}
