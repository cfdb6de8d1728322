package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is the annualization basis for daily return series
const tradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateReturns converts a price series into periodic simple returns
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns[i-1] = 0
			continue
		}
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns
}

// AnnualizedReturn compounds daily returns into an annualized figure
func AnnualizedReturn(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	growth := 1.0
	for _, r := range dailyReturns {
		growth *= 1 + r
	}
	years := float64(len(dailyReturns)) / tradingDaysPerYear
	if years == 0 || growth <= 0 {
		return 0
	}
	return math.Pow(growth, 1/years) - 1
}

// AnnualizedVolatility calculates annualized volatility from daily returns
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(tradingDaysPerYear)
}
