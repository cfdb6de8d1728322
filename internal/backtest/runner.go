package backtest

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/signals"
	"github.com/ovtrader/ov-trader/internal/wallet"
	"github.com/ovtrader/ov-trader/pkg/formulas"
)

// PriceSource provides ranked scores and historical prices for the
// backtest universe.
type PriceSource interface {
	ComputeScores(universe []string) (map[string]float64, error)
	PriceHistory(symbol string) []float64
}

// Result holds the outcome of a backtest run
type Result struct {
	Analysis map[string]interface{} `json:"analysis"`
	Report   map[string]interface{} `json:"report"`
}

// Runner executes a simple long-only backtest over the signal universe
type Runner struct {
	signalCfg config.SignalSourceConfig
	btCfg     config.BacktestConfig
	source    PriceSource
	log       zerolog.Logger
}

// NewRunner creates a backtest runner. A nil source makes Run fail with
// signals.ErrUnavailable, which the service records as a failed backtest.
func NewRunner(signalCfg config.SignalSourceConfig, btCfg config.BacktestConfig, source PriceSource, log zerolog.Logger) *Runner {
	return &Runner{
		signalCfg: signalCfg,
		btCfg:     btCfg,
		source:    source,
		log:       log.With().Str("component", "backtest").Logger(),
	}
}

// Run scores the universe, converts scores into long-only normalized
// weights, walks the price history through a virtual wallet, and reports
// risk metrics on the resulting equity curve.
func (r *Runner) Run() (*Result, error) {
	if r.source == nil {
		return nil, fmt.Errorf("cannot run backtest: %w", signals.ErrUnavailable)
	}

	scores, err := r.source.ComputeScores(r.universe())
	if err != nil {
		return nil, fmt.Errorf("failed to compute scores: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no symbols scored for backtest")
	}

	symbols := make([]string, 0, len(scores))
	for symbol := range scores {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	weights := longOnlyWeights(scores, symbols)

	returnsBySymbol := make(map[string][]float64, len(symbols))
	periods := -1
	for _, symbol := range symbols {
		prices := r.source.PriceHistory(symbol)
		rets := formulas.CalculateReturns(prices)
		if periods < 0 || len(rets) < periods {
			periods = len(rets)
		}
		returnsBySymbol[symbol] = rets
	}
	if periods <= 0 {
		return nil, fmt.Errorf("insufficient price history for backtest")
	}

	w := wallet.New(r.btCfg.Cash, "USD")
	portfolioReturns := make([]float64, 0, periods)
	for t := 0; t < periods; t++ {
		var dayReturn float64
		for _, symbol := range symbols {
			rets := returnsBySymbol[symbol]
			dayReturn += weights[symbol] * rets[len(rets)-periods+t]
		}
		portfolioReturns = append(portfolioReturns, dayReturn)
		w.ApplyReturn(dayReturn, fmt.Sprintf("day-%d", t+1))
	}

	equity := make([]float64, len(w.History))
	for i, entry := range w.History {
		equity[i] = entry.Balance
	}

	analysis := map[string]interface{}{
		"total_return":          w.Balance/r.btCfg.Cash - 1,
		"annualized_return":     formulas.AnnualizedReturn(portfolioReturns),
		"annualized_volatility": formulas.AnnualizedVolatility(portfolioReturns),
		"max_drawdown":          formulas.MaxDrawdown(equity),
		"periods":               periods,
	}
	if sharpe := formulas.SharpeRatio(portfolioReturns, 0.02); sharpe != nil {
		analysis["sharpe_ratio"] = *sharpe
	}

	result := &Result{
		Analysis: analysis,
		Report: map[string]interface{}{
			"benchmark":     r.btCfg.Benchmark,
			"weights":       weights,
			"final_balance": w.Balance,
			"summary":       w.Summary(),
		},
	}

	r.log.Info().
		Float64("final_balance", w.Balance).
		Int("periods", periods).
		Msg("Backtest completed")

	return result, nil
}

func (r *Runner) universe() []string {
	// "SP500" is the platform's index shorthand, not a tradable symbol
	if len(r.signalCfg.Instruments) == 1 && r.signalCfg.Instruments[0] == "SP500" {
		return nil
	}
	return r.signalCfg.Instruments
}

// longOnlyWeights clips negative scores to zero and normalizes. An
// all-zero clipped row falls back to uniform weights.
func longOnlyWeights(scores map[string]float64, symbols []string) map[string]float64 {
	clipped := make(map[string]float64, len(symbols))
	var sum float64
	for _, symbol := range symbols {
		score := scores[symbol]
		if score < 0 {
			score = 0
		}
		clipped[symbol] = score
		sum += score
	}

	weights := make(map[string]float64, len(symbols))
	if sum == 0 {
		uniform := 1.0 / float64(len(symbols))
		for _, symbol := range symbols {
			weights[symbol] = uniform
		}
		return weights
	}

	for _, symbol := range symbols {
		weights[symbol] = clipped[symbol] / sum
	}
	return weights
}
