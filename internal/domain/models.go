package domain

import (
	"fmt"
	"strings"
)

// OrderSide represents the order direction
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// IsValid checks if the order side is valid
func (s OrderSide) IsValid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// OrderSideFromString creates an OrderSide from a string (case-insensitive)
func OrderSideFromString(value string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy":
		return OrderSideBuy, nil
	case "sell":
		return OrderSideSell, nil
	default:
		return "", fmt.Errorf("invalid order side: %q", value)
	}
}

// OrderType represents the execution style of an order
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Order is an immutable order intent produced by portfolio construction.
// Quantity carries the signed weight-derived size; Side is authoritative
// for direction.
type Order struct {
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	Side      OrderSide `json:"side"`
	OrderType OrderType `json:"order_type"`
	Price     *float64  `json:"price,omitempty"`
}

// NewMarketOrder creates a market order for the given symbol
func NewMarketOrder(symbol string, quantity float64, side OrderSide) Order {
	return Order{
		Symbol:    symbol,
		Quantity:  quantity,
		Side:      side,
		OrderType: OrderTypeMarket,
	}
}

// Snapshot is a per-symbol feature snapshot captured by the forecast
// agent for prompt rendering
type Snapshot struct {
	AsOf     string             `json:"as_of,omitempty"`
	Features map[string]float64 `json:"features"`
}

// DecisionAction is the action recommended by the decision agent
type DecisionAction string

const (
	ActionBuy  DecisionAction = "buy"
	ActionSell DecisionAction = "sell"
	ActionHold DecisionAction = "hold"
)

// Decision is the structured trading recommendation for a single cycle.
// Produced either by parsing a model response or by the deterministic
// fallback when the model output is unavailable or unparseable.
type Decision struct {
	Symbol       string         `json:"symbol"`
	Action       DecisionAction `json:"action"`
	Confidence   int            `json:"confidence"`
	TargetWeight float64        `json:"target_weight"`
	Thesis       string         `json:"thesis"`
	RiskNotes    string         `json:"risk_notes"`
	Analysis     []string       `json:"analysis"`
}
