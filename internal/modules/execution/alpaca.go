package execution

import (
	"fmt"
	"math"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ovtrader/ov-trader/internal/domain"
)

// AlpacaBridge submits orders to the Alpaca brokerage API. The underlying
// client is created lazily on the first Submit so that an unconfigured
// bridge costs nothing until used.
type AlpacaBridge struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *alpaca.Client
	log       zerolog.Logger
}

// AlpacaConfig holds construction options for the Alpaca bridge
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string // paper or live endpoint
	Log       zerolog.Logger
}

// NewAlpacaBridge creates an Alpaca execution bridge
func NewAlpacaBridge(cfg AlpacaConfig) *AlpacaBridge {
	return &AlpacaBridge{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		baseURL:   cfg.BaseURL,
		log:       cfg.Log.With().Str("component", "alpaca").Logger(),
	}
}

// connect initialises the API client
func (b *AlpacaBridge) connect() error {
	if b.apiKey == "" || b.apiSecret == "" {
		return fmt.Errorf("%w: missing Alpaca credentials", ErrNotInstalled)
	}

	b.client = alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    b.apiKey,
		APISecret: b.apiSecret,
		BaseURL:   b.baseURL,
	})
	b.log.Info().Msg("Alpaca client connected")
	return nil
}

// Submit places a market order for the given intent and returns a plain
// result mapping.
func (b *AlpacaBridge) Submit(order domain.Order) (map[string]interface{}, error) {
	if b.client == nil {
		if err := b.connect(); err != nil {
			return nil, err
		}
	}

	qty := decimal.NewFromFloat(math.Abs(order.Quantity))
	placed, err := b.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      order.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(order.Side),
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order for %s: %w", order.Symbol, err)
	}

	return map[string]interface{}{
		"order_id": placed.ID,
		"symbol":   order.Symbol,
		"quantity": order.Quantity,
		"side":     string(order.Side),
		"status":   fmt.Sprint(placed.Status),
	}, nil
}
