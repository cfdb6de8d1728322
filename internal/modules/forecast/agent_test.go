package forecast

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/domain"
)

type fakeSource struct {
	scores    map[string]float64
	scoresErr error
	requested []string
}

func (f *fakeSource) ComputeScores(_ []string) (map[string]float64, error) {
	return f.scores, f.scoresErr
}

func (f *fakeSource) FeatureSnapshots(symbols []string) map[string]domain.Snapshot {
	f.requested = symbols
	snapshots := make(map[string]domain.Snapshot, len(symbols))
	for _, symbol := range symbols {
		snapshots[symbol] = domain.Snapshot{
			AsOf:     "2024-01-01",
			Features: map[string]float64{"close": 100},
		}
	}
	return snapshots
}

func TestExecute_NilSourceRecordsError(t *testing.T) {
	a := New(nil, nil, zerolog.Nop())
	ctx := a.Execute(agent.NewContext("2024-01-01T00:00:00Z"))

	payload, ok := ctx.SharedMemory[AgentName].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, payload["error"], "not installed")

	_, hasAlpha := ctx.MarketState["alpha"]
	assert.False(t, hasAlpha)
}

func TestExecute_SourceFailureRecordsError(t *testing.T) {
	source := &fakeSource{scoresErr: errors.New("platform unreachable")}
	a := New(source, nil, zerolog.Nop())

	ctx := a.Execute(agent.NewContext("2024-01-01T00:00:00Z"))

	payload := ctx.SharedMemory[AgentName].(map[string]interface{})
	assert.Equal(t, "platform unreachable", payload["error"])
}

func TestExecute_PopulatesAlphaAndSnapshots(t *testing.T) {
	source := &fakeSource{scores: map[string]float64{
		"AAPL": 0.4,
		"MSFT": 0.2,
		"TSLA": -0.3,
	}}
	a := New(source, nil, zerolog.Nop())

	ctx := a.Execute(agent.NewContext("2024-01-01T00:00:00Z"))

	assert.Equal(t, source.scores, ctx.MarketState["alpha"])

	marketData, ok := ctx.MarketState["market_data"].(map[string]domain.Snapshot)
	require.True(t, ok)
	assert.Len(t, marketData, 3)

	payload := ctx.SharedMemory[AgentName].(map[string]interface{})
	metadata := payload["metadata"].(map[string]interface{})
	assert.Equal(t, 3, metadata["universe_size"])
}

func TestExecute_DoesNotOverwriteExistingAlpha(t *testing.T) {
	source := &fakeSource{scores: map[string]float64{"AAPL": 0.4}}
	a := New(source, nil, zerolog.Nop())

	ctx := agent.NewContext("2024-01-01T00:00:00Z")
	existing := map[string]float64{"NVDA": 0.9}
	ctx.MarketState["alpha"] = existing

	ctx = a.Execute(ctx)

	assert.Equal(t, existing, ctx.MarketState["alpha"])
}

func TestExecute_SnapshotsOnlyForTopRanked(t *testing.T) {
	scores := map[string]float64{
		"A": 0.7, "B": 0.6, "C": 0.5, "D": 0.4, "E": 0.3, "F": 0.2, "G": 0.1,
	}
	source := &fakeSource{scores: scores}
	a := New(source, nil, zerolog.Nop())

	a.Execute(agent.NewContext("2024-01-01T00:00:00Z"))

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, source.requested)
}

func TestTopRanked_OrdersBySignedScoreWithAlphabeticalTies(t *testing.T) {
	scores := map[string]float64{
		"TSLA": -0.5,
		"AAPL": 0.3,
		"MSFT": 0.3,
		"GOOG": 0.8,
	}

	assert.Equal(t, []string{"GOOG", "AAPL", "MSFT", "TSLA"}, topRanked(scores, 10))
	assert.Equal(t, []string{"GOOG", "AAPL"}, topRanked(scores, 2))
}
