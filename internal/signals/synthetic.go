package signals

import (
	"math"
	"math/rand"
	"time"

	talib "github.com/markcheno/go-talib"

	"github.com/ovtrader/ov-trader/internal/domain"
)

// SyntheticSource produces scores and feature snapshots from seeded
// random-walk price paths. It stands in for the external quantitative
// platform in demos, backtests, and tests.
type SyntheticSource struct {
	days   int
	seed   int64
	prices map[string][]float64
}

// defaultUniverse mirrors the sample universe used by the demo scenario
var defaultUniverse = []string{"AAPL", "MSFT", "GOOG"}

// defaultStartPrices are rough anchors for the random walks
var defaultStartPrices = map[string]float64{
	"AAPL": 180.0,
	"MSFT": 330.0,
	"GOOG": 130.0,
}

// NewSyntheticSource creates a synthetic source with the given history
// length and random seed. The same seed always yields the same paths.
func NewSyntheticSource(days int, seed int64) *SyntheticSource {
	if days < 30 {
		days = 90
	}
	return &SyntheticSource{
		days:   days,
		seed:   seed,
		prices: make(map[string][]float64),
	}
}

// ComputeScores ranks the universe by 21-day momentum, scaled into a
// roughly [-1, 1] signal. An empty universe falls back to the default
// sample tickers.
func (s *SyntheticSource) ComputeScores(universe []string) (map[string]float64, error) {
	symbols := universe
	if len(symbols) == 0 {
		symbols = defaultUniverse
	}

	scores := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		prices := s.pricesFor(symbol)
		last := prices[len(prices)-1]
		ref := prices[len(prices)-22]
		momentum := last/ref - 1

		// Squash momentum into a bounded score
		scores[symbol] = math.Tanh(momentum * 10)
	}

	return scores, nil
}

// FeatureSnapshots builds technical snapshots (moving averages, momentum,
// volatility) for the given symbols using talib over the synthetic paths.
func (s *SyntheticSource) FeatureSnapshots(symbols []string) map[string]domain.Snapshot {
	snapshots := make(map[string]domain.Snapshot, len(symbols))

	for _, symbol := range symbols {
		prices := s.pricesFor(symbol)
		n := len(prices)

		returns := make([]float64, n-1)
		for i := 1; i < n; i++ {
			returns[i-1] = prices[i]/prices[i-1] - 1
		}

		ma5 := talib.Sma(prices, 5)
		ma10 := talib.Sma(prices, 10)
		ma21 := talib.Sma(prices, 21)
		mom5 := talib.Mom(prices, 5)
		mom10 := talib.Mom(prices, 10)
		mom21 := talib.Mom(prices, 21)
		vol21 := talib.StdDev(returns, 21, 1.0)

		snapshots[symbol] = domain.Snapshot{
			AsOf: time.Now().UTC().Format("2006-01-02"),
			Features: map[string]float64{
				"close":         prices[n-1],
				"ma_5":          ma5[n-1],
				"ma_10":         ma10[n-1],
				"ma_21":         ma21[n-1],
				"momentum_5":    mom5[n-1],
				"momentum_10":   mom10[n-1],
				"momentum_21":   mom21[n-1],
				"volatility_21": vol21[len(vol21)-1],
			},
		}
	}

	return snapshots
}

// PriceHistory returns the synthetic close series for a symbol
func (s *SyntheticSource) PriceHistory(symbol string) []float64 {
	prices := s.pricesFor(symbol)
	out := make([]float64, len(prices))
	copy(out, prices)
	return out
}

// pricesFor lazily generates and caches the random walk for a symbol.
// Each symbol's walk is seeded from the source seed plus a symbol hash so
// paths are stable per symbol regardless of access order.
func (s *SyntheticSource) pricesFor(symbol string) []float64 {
	if prices, ok := s.prices[symbol]; ok {
		return prices
	}

	start, ok := defaultStartPrices[symbol]
	if !ok {
		start = 100.0
	}

	rng := rand.New(rand.NewSource(s.seed + symbolSeed(symbol)))
	prices := make([]float64, s.days)
	price := start
	for i := 0; i < s.days; i++ {
		move := rng.NormFloat64()*0.015 + 0.0008
		price *= 1 + move
		prices[i] = price
	}

	s.prices[symbol] = prices
	return prices
}

func symbolSeed(symbol string) int64 {
	var h int64
	for _, r := range symbol {
		h = h*31 + int64(r)
	}
	return h
}
