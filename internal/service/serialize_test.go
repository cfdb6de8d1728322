package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovtrader/ov-trader/internal/domain"
)

func TestSerialize_Scalars(t *testing.T) {
	assert.Nil(t, Serialize(nil))
	assert.Equal(t, "text", Serialize("text"))
	assert.Equal(t, 42, Serialize(42))
	assert.Equal(t, 1.5, Serialize(1.5))
	assert.Equal(t, true, Serialize(true))
}

func TestSerialize_TimeBecomesRFC3339(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15T09:30:00Z", Serialize(ts))
}

func TestSerialize_DecimalBecomesFloat(t *testing.T) {
	d := decimal.NewFromFloat(12.5)
	assert.Equal(t, 12.5, Serialize(d))
}

func TestSerialize_NestedMapsAndSlices(t *testing.T) {
	input := map[string]interface{}{
		"when": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"nested": map[string]interface{}{
			"values": []interface{}{1.0, "two", decimal.NewFromInt(3)},
		},
	}

	out, ok := Serialize(input).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "2024-01-01T00:00:00Z", out["when"])
	nested := out["nested"].(map[string]interface{})
	values := nested["values"].([]interface{})
	assert.Equal(t, []interface{}{1.0, "two", 3.0}, values)
}

func TestSerialize_TypedMapsAndSlices(t *testing.T) {
	weights := map[string]float64{"AAPL": 0.6, "TSLA": -0.4}
	out, ok := Serialize(weights).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.6, out["AAPL"])
	assert.Equal(t, -0.4, out["TSLA"])

	orders := []domain.Order{domain.NewMarketOrder("AAPL", 0.5, domain.OrderSideBuy)}
	list, ok := Serialize(orders).([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestSerialize_StructUsesJSONTags(t *testing.T) {
	decision := domain.Decision{
		Symbol:       "AAPL",
		Action:       domain.ActionBuy,
		Confidence:   70,
		TargetWeight: 0.42,
		Thesis:       "momentum",
	}

	out, ok := Serialize(decision).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AAPL", out["symbol"])
	assert.Equal(t, "buy", out["action"])
	assert.Equal(t, 70.0, out["confidence"])
	assert.Equal(t, 0.42, out["target_weight"])
}

func TestSerialize_NilPointer(t *testing.T) {
	var decision *domain.Decision
	assert.Nil(t, Serialize(decision))
}

func TestSerialize_PointerDereferences(t *testing.T) {
	decision := &domain.Decision{Symbol: "MSFT", Action: domain.ActionHold}
	out, ok := Serialize(decision).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "MSFT", out["symbol"])
}
