package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/backtest"
	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/events"
	"github.com/ovtrader/ov-trader/internal/history"
	"github.com/ovtrader/ov-trader/internal/llm"
	"github.com/ovtrader/ov-trader/internal/modules/decision"
	"github.com/ovtrader/ov-trader/internal/modules/execution"
	"github.com/ovtrader/ov-trader/internal/modules/forecast"
	"github.com/ovtrader/ov-trader/internal/modules/news"
	"github.com/ovtrader/ov-trader/internal/modules/portfolio"
	"github.com/ovtrader/ov-trader/internal/signals"
)

// Cycle statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Deps holds the external capabilities injected into the service. Any of
// them may be nil, in which case the owning agent degrades per the error
// taxonomy instead of failing.
type Deps struct {
	Model   llm.Client
	Signals signals.Source
	Prices  backtest.PriceSource
	Bridge  execution.Bridge
	Repo    *history.Repository
	Events  *events.Manager
	Log     zerolog.Logger
}

// Service is the high-level facade exposing orchestration and backtesting.
// It owns the active configuration and the bounded record history.
type Service struct {
	mu    sync.Mutex
	cfg   config.TraderConfig
	store *history.Store
	deps  Deps
	log   zerolog.Logger
}

// New creates a trading service with the given starting configuration
func New(cfg config.TraderConfig, deps Deps) *Service {
	if deps.Events == nil {
		deps.Events = events.NewManager(deps.Log)
	}
	return &Service{
		cfg:   cfg,
		store: history.NewStore(),
		deps:  deps,
		log:   deps.Log.With().Str("component", "service").Logger(),
	}
}

// ---------------------------------------------------------------------
// Configuration management
// ---------------------------------------------------------------------

// GetConfig returns the active configuration as a serialisable document
func (s *Service) GetConfig() (map[string]interface{}, error) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return cfg.ToMap()
}

// UpdateConfig deep-merges a partial override into the active
// configuration and returns the updated document.
func (s *Service) UpdateConfig(partial map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.cfg.ApplyUpdate(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to apply config update: %w", err)
	}
	s.cfg = updated

	s.deps.Events.Emit(events.ConfigUpdated, "service", map[string]interface{}{
		"keys": len(partial),
	})

	return s.cfg.ToMap()
}

// effectiveConfig resolves the configuration for one run, applying the
// per-run override without touching the persisted configuration.
func (s *Service) effectiveConfig(override map[string]interface{}) (config.TraderConfig, error) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	if override == nil {
		return cfg, nil
	}
	return cfg.ApplyUpdate(override)
}

// ---------------------------------------------------------------------
// Trading orchestration
// ---------------------------------------------------------------------

// RunCycle executes a full agent cycle and returns the stored record.
// No failure inside the pipeline aborts the cycle; a wholesale assembly
// failure yields a failed record with a minimal context, never an error.
func (s *Service) RunCycle(notes string, override map[string]interface{}) history.Record {
	started := time.Now().UTC()
	status := StatusCompleted

	cfg, err := s.effectiveConfig(override)
	if err != nil {
		s.log.Error().Err(err).Msg("Invalid cycle override")
		cfg, _ = s.effectiveConfig(nil)
		status = StatusFailed
		ctx := agent.NewContext(started.Format(time.RFC3339))
		ctx.SharedMemory["orchestrator"] = map[string]interface{}{"error": err.Error()}
		return s.finishCycle(ctx, status, notes, cfg, started)
	}

	ctx := s.runPipeline(cfg, started, &status)
	return s.finishCycle(ctx, status, notes, cfg, started)
}

// runPipeline builds and runs the orchestrator, recovering any panic into
// a failed minimal context.
func (s *Service) runPipeline(cfg config.TraderConfig, started time.Time, status *string) (ctx *agent.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Trading cycle failed")
			*status = StatusFailed
			ctx = agent.NewContext(started.Format(time.RFC3339))
			ctx.SharedMemory["orchestrator"] = map[string]interface{}{
				"error": fmt.Sprint(r),
			}
		}
	}()

	orchestrator := s.buildOrchestrator(cfg)
	return orchestrator.RunCycle()
}

// buildOrchestrator wires the fixed agent sequence from the configuration
// and the injected capabilities.
func (s *Service) buildOrchestrator(cfg config.TraderConfig) *agent.Orchestrator {
	opts := llm.Options{
		Temperature: cfg.ModelResearch.Temperature,
		MaxTokens:   cfg.ModelResearch.MaxTokens,
	}

	agents := []agent.Agent{
		news.New(s.deps.Model, opts, nil, s.deps.Log),
		forecast.New(s.deps.Signals, universeFromConfig(cfg.SignalSource), s.deps.Log),
		decision.New(s.deps.Model, opts, decision.DefaultTopN, s.deps.Log),
		portfolio.New(cfg.Risk, cfg.Execution.TargetGrossExposure, s.deps.Log),
		execution.New(s.deps.Bridge, s.deps.Log),
	}

	return agent.NewOrchestrator(agents, s.deps.Log)
}

// universeFromConfig maps the configured instrument list to a tradable
// universe; the "SP500" index shorthand defers to the source's default.
func universeFromConfig(cfg config.SignalSourceConfig) []string {
	if len(cfg.Instruments) == 1 && cfg.Instruments[0] == "SP500" {
		return nil
	}
	return cfg.Instruments
}

// finishCycle serializes the context, stores the record, and emits events
func (s *Service) finishCycle(ctx *agent.Context, status, notes string, cfg config.TraderConfig, started time.Time) history.Record {
	record := s.contextToRecord(ctx, status, notes, cfg)
	record["duration"] = time.Since(started).Seconds()

	s.store.Insert(history.KindRun, record)
	s.persist(history.KindRun, record)

	eventType := events.CycleCompleted
	if status == StatusFailed {
		eventType = events.CycleFailed
	}
	s.deps.Events.Emit(eventType, "service", map[string]interface{}{
		"record_id": record["id"],
		"status":    status,
	})

	return record
}

// ListRuns returns the most recent trading cycles, most recent first
func (s *Service) ListRuns(limit int) []history.Record {
	return s.store.List(history.KindRun, limit)
}

// LatestRun returns the most recent run if available
func (s *Service) LatestRun() (history.Record, bool) {
	return s.store.Latest(history.KindRun)
}

// FindRun looks up a run record by identifier
func (s *Service) FindRun(id string) (history.Record, bool) {
	return s.store.Find(history.KindRun, id)
}

// ---------------------------------------------------------------------
// Backtesting
// ---------------------------------------------------------------------

// RunBacktest executes a backtest and returns the stored record. Missing
// data dependencies yield a failed record, not an error.
func (s *Service) RunBacktest(notes string, override map[string]interface{}) history.Record {
	started := time.Now().UTC()

	cfg, cfgErr := s.effectiveConfig(override)
	if cfgErr != nil {
		cfg, _ = s.effectiveConfig(nil)
	}

	snapshot, _ := cfg.ToMap()
	record := history.Record{
		"id":              uuid.NewString(),
		"timestamp":       started.Format(time.RFC3339),
		"status":          StatusCompleted,
		"config_snapshot": Serialize(snapshot),
	}
	if notes != "" {
		record["notes"] = notes
	}

	if cfgErr != nil {
		record["status"] = StatusFailed
		record["error"] = cfgErr.Error()
	} else {
		runner := backtest.NewRunner(cfg.SignalSource, cfg.Backtest, s.deps.Prices, s.deps.Log)
		result, err := runner.Run()
		if err != nil {
			s.log.Error().Err(err).Msg("Backtest failed")
			record["status"] = StatusFailed
			record["error"] = err.Error()
		} else {
			record["result"] = map[string]interface{}{
				"analysis": Serialize(result.Analysis),
				"report":   Serialize(result.Report),
			}
		}
	}

	record["duration"] = time.Since(started).Seconds()

	s.store.Insert(history.KindBacktest, record)
	s.persist(history.KindBacktest, record)

	eventType := events.BacktestCompleted
	if record["status"] == StatusFailed {
		eventType = events.BacktestFailed
	}
	s.deps.Events.Emit(eventType, "service", map[string]interface{}{
		"record_id": record["id"],
		"status":    record["status"],
	})

	return record
}

// ListBacktests returns stored backtest results, most recent first
func (s *Service) ListBacktests(limit int) []history.Record {
	return s.store.List(history.KindBacktest, limit)
}

// ---------------------------------------------------------------------
// Demo scenarios
// ---------------------------------------------------------------------

// RunDemo executes the self-contained sample scenario over synthetic data
// and records the resulting wallet statistics.
func (s *Service) RunDemo(initialBalance float64, notes string) history.Record {
	started := time.Now().UTC()
	if initialBalance <= 0 {
		initialBalance = 100.0
	}

	cfg, _ := s.effectiveConfig(nil)
	demoCfg := cfg.Backtest
	demoCfg.Cash = initialBalance

	source := signals.NewSyntheticSource(90, 42)
	runner := backtest.NewRunner(cfg.SignalSource, demoCfg, source, s.deps.Log)

	record := history.Record{
		"id":              uuid.NewString(),
		"timestamp":       started.Format(time.RFC3339),
		"status":          StatusCompleted,
		"initial_balance": initialBalance,
	}
	if notes != "" {
		record["notes"] = notes
	}

	result, err := runner.Run()
	if err != nil {
		record["status"] = StatusFailed
		record["error"] = err.Error()
	} else {
		record["result"] = map[string]interface{}{
			"analysis": Serialize(result.Analysis),
			"report":   Serialize(result.Report),
		}
	}

	record["duration"] = time.Since(started).Seconds()

	s.store.Insert(history.KindDemo, record)
	s.persist(history.KindDemo, record)
	s.deps.Events.Emit(events.DemoCompleted, "service", map[string]interface{}{
		"record_id": record["id"],
	})

	return record
}

// ListDemoRuns returns previously executed demo simulations
func (s *Service) ListDemoRuns(limit int) []history.Record {
	return s.store.List(history.KindDemo, limit)
}

// LatestDemo returns the most recent demo run if available
func (s *Service) LatestDemo() (history.Record, bool) {
	return s.store.Latest(history.KindDemo)
}

// ---------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------

// Dashboard returns a combined payload suitable for dashboard rendering
func (s *Service) Dashboard() map[string]interface{} {
	cfg, _ := s.GetConfig()

	payload := map[string]interface{}{
		"config":    cfg,
		"runs":      s.ListRuns(10),
		"backtests": s.ListBacktests(5),
		"demos":     s.ListDemoRuns(5),
		"metrics": map[string]interface{}{
			"total_runs":      s.store.Len(history.KindRun),
			"total_backtests": s.store.Len(history.KindBacktest),
			"total_demos":     s.store.Len(history.KindDemo),
		},
	}

	if latest, ok := s.LatestRun(); ok {
		payload["latest_run"] = latest
	} else {
		payload["latest_run"] = nil
	}
	if latest, ok := s.LatestDemo(); ok {
		payload["latest_demo"] = latest
	} else {
		payload["latest_demo"] = nil
	}

	return payload
}

// ---------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------

// contextToRecord captures a cycle context into a serializable record
func (s *Service) contextToRecord(ctx *agent.Context, status, notes string, cfg config.TraderConfig) history.Record {
	shared, _ := Serialize(ctx.SharedMemory).(map[string]interface{})
	market, _ := Serialize(ctx.MarketState).(map[string]interface{})
	snapshot, _ := cfg.ToMap()

	timestamp := ctx.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	record := history.Record{
		"id":              uuid.NewString(),
		"timestamp":       timestamp,
		"status":          status,
		"shared_memory":   shared,
		"market_state":    market,
		"summary":         buildSummary(shared, market),
		"config_snapshot": Serialize(snapshot),
	}
	if notes != "" {
		record["notes"] = notes
	}
	return record
}

// buildSummary condenses a serialized context into the decision, the
// orders, and any warnings or errors agents recorded.
func buildSummary(shared, market map[string]interface{}) map[string]interface{} {
	decisionValue := market["llm_decision"]
	if decisionValue == nil {
		if payload, ok := shared["llm_decision"].(map[string]interface{}); ok {
			if parsed := payload["parsed"]; parsed != nil {
				decisionValue = parsed
			} else if fallback := payload["fallback"]; fallback != nil {
				decisionValue = fallback
			} else if response := payload["response"]; response != nil {
				decisionValue = response
			}
		}
	}

	orders, ok := shared["portfolio_orders"].([]interface{})
	if !ok {
		orders = []interface{}{}
	}

	warnings := []string{}
	errors := []string{}
	for agentName, payload := range shared {
		entry, ok := payload.(map[string]interface{})
		if !ok {
			continue
		}
		if warning, ok := entry["warning"].(string); ok {
			warnings = append(warnings, fmt.Sprintf("%s: %s", agentName, warning))
		}
		if errMsg, ok := entry["error"].(string); ok {
			errors = append(errors, fmt.Sprintf("%s: %s", agentName, errMsg))
		}
	}

	return map[string]interface{}{
		"decision": decisionValue,
		"orders":   orders,
		"warnings": warnings,
		"errors":   errors,
	}
}

// persist writes the record through to sqlite when a repository is wired
func (s *Service) persist(kind history.Kind, record history.Record) {
	if s.deps.Repo == nil {
		return
	}
	if err := s.deps.Repo.Save(kind, record); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to persist record")
	}
}
