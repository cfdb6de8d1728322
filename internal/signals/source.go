package signals

import (
	"errors"

	"github.com/ovtrader/ov-trader/internal/domain"
)

// ErrUnavailable is returned when the underlying signal platform is not
// installed or reachable. The forecast agent degrades by recording the
// error and skipping score population.
var ErrUnavailable = errors.New("signal source unavailable")

// Source is the opaque quantitative signal-source capability: it ranks a
// universe of symbols and exposes feature snapshots for prompt rendering.
type Source interface {
	// ComputeScores returns a ranked signal score per symbol.
	ComputeScores(universe []string) (map[string]float64, error)

	// FeatureSnapshots returns per-symbol feature snapshots for the
	// given symbols. Symbols without data are simply absent.
	FeatureSnapshots(symbols []string) map[string]domain.Snapshot
}
