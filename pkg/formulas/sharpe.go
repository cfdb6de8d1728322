package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio of a daily return
// series.
//
//	Sharpe = (mean return - periodic risk-free rate) / stddev of returns
//	Annualized: Sharpe x sqrt(252)
//
// Returns nil when there is insufficient data or zero dispersion.
func SharpeRatio(returns []float64, riskFreeRate float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	stdDev := StdDev(returns)
	if stdDev == 0 {
		return nil
	}

	periodicRiskFree := riskFreeRate / tradingDaysPerYear
	sharpe := (Mean(returns) - periodicRiskFree) / stdDev
	annualized := sharpe * math.Sqrt(tradingDaysPerYear)
	return &annualized
}
