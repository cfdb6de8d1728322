package config

import (
	"encoding/json"
	"fmt"
)

// ModelConfig holds settings for a large language model used by the agents
type ModelConfig struct {
	Provider    string                 `json:"provider"`
	Model       string                 `json:"model"`
	APIKey      string                 `json:"api_key,omitempty"`
	BaseURL     string                 `json:"base_url,omitempty"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
	// Extra is an open bag of provider-specific knobs. It is an escape
	// hatch for options the typed fields do not cover.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// SignalSourceConfig holds settings for the quantitative signal platform
type SignalSourceConfig struct {
	DataRoot    string   `json:"data_root"`
	Calendar    string   `json:"calendar"`
	Instruments []string `json:"instruments"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time,omitempty"`
	AutoUpdate  bool     `json:"auto_update"`
}

// ExecutionConfig holds settings for the brokerage execution bridge
type ExecutionConfig struct {
	ServerHost          string  `json:"server_host"`
	ServerPort          int     `json:"server_port"`
	ClientID            string  `json:"client_id"`
	TargetGrossExposure float64 `json:"target_gross_exposure"`
}

// RiskConfig holds risk management and portfolio constraints
type RiskConfig struct {
	MaxLeverage        float64 `json:"max_leverage"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	PositionLimit      float64 `json:"position_limit"`
	StopLossPct        float64 `json:"stop_loss_pct"`
	TakeProfitPct      float64 `json:"take_profit_pct"`
	RebalanceFrequency string  `json:"rebalance_frequency"`
}

// BacktestConfig holds parameters used when running backtests
type BacktestConfig struct {
	Benchmark string  `json:"benchmark"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Cash      float64 `json:"cash"`
	Verbose   bool    `json:"verbose"`
}

// TraderConfig is the top-level runtime configuration for the trading system.
// Unknown top-level keys supplied via the API are preserved in Extra rather
// than rejected.
type TraderConfig struct {
	SignalSource  SignalSourceConfig     `json:"signal_source"`
	ModelResearch ModelConfig            `json:"model_research"`
	ModelForecast *ModelConfig           `json:"model_forecast,omitempty"`
	Execution     ExecutionConfig        `json:"execution"`
	Risk          RiskConfig             `json:"risk"`
	Backtest      BacktestConfig         `json:"backtest"`
	Extra         map[string]interface{} `json:"-"`
}

// sectionKeys are the recognised top-level configuration sections
var sectionKeys = map[string]bool{
	"signal_source":  true,
	"model_research": true,
	"model_forecast": true,
	"execution":      true,
	"risk":           true,
	"backtest":       true,
}

// DefaultTraderConfig returns a sensible default configuration for
// experimentation
func DefaultTraderConfig() TraderConfig {
	return TraderConfig{
		SignalSource: SignalSourceConfig{
			DataRoot:    "./data/signals",
			Calendar:    "USNYSE",
			Instruments: []string{"SP500"},
			StartTime:   "2015-01-01",
		},
		ModelResearch: ModelConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   2048,
		},
		Execution: ExecutionConfig{
			ServerHost:          "127.0.0.1",
			ServerPort:          33333,
			ClientID:            "ov-trader",
			TargetGrossExposure: 1.0,
		},
		Risk: RiskConfig{
			MaxLeverage:        2.0,
			MaxDrawdown:        0.2,
			PositionLimit:      0.1,
			StopLossPct:        0.05,
			TakeProfitPct:      0.15,
			RebalanceFrequency: "1d",
		},
		Backtest: BacktestConfig{
			Benchmark: "SPY",
			StartTime: "2018-01-01",
			EndTime:   "2023-12-31",
			Cash:      1_000_000,
			Verbose:   true,
		},
	}
}

// ToMap converts the configuration into a plain nested map, including any
// preserved unknown keys
func (c TraderConfig) ToMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	doc := make(map[string]interface{})
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for key, value := range c.Extra {
		if _, known := doc[key]; !known {
			doc[key] = value
		}
	}

	return doc, nil
}

// TraderConfigFromMap builds a TraderConfig from a plain nested map.
// Unknown top-level keys are collected into Extra.
func TraderConfigFromMap(doc map[string]interface{}) (TraderConfig, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return TraderConfig{}, fmt.Errorf("failed to marshal config document: %w", err)
	}

	var cfg TraderConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return TraderConfig{}, fmt.Errorf("failed to decode config document: %w", err)
	}

	for key, value := range doc {
		if !sectionKeys[key] {
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]interface{})
			}
			cfg.Extra[key] = value
		}
	}

	return cfg, nil
}

// ApplyUpdate deep-merges a partial override into the configuration and
// returns the merged result as a new value. The receiver is not mutated.
func (c TraderConfig) ApplyUpdate(override map[string]interface{}) (TraderConfig, error) {
	base, err := c.ToMap()
	if err != nil {
		return TraderConfig{}, err
	}

	return TraderConfigFromMap(Merge(base, override))
}
