package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/database"
	"github.com/ovtrader/ov-trader/internal/events"
	"github.com/ovtrader/ov-trader/internal/history"
	"github.com/ovtrader/ov-trader/internal/llm"
	"github.com/ovtrader/ov-trader/internal/modules/execution"
	"github.com/ovtrader/ov-trader/internal/scheduler"
	"github.com/ovtrader/ov-trader/internal/server"
	"github.com/ovtrader/ov-trader/internal/service"
	"github.com/ovtrader/ov-trader/internal/signals"
	"github.com/ovtrader/ov-trader/pkg/logger"
)

func main() {
	// Initialize logger
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "error", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting OV Trader")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire external capabilities. Missing credentials leave a capability
	// nil and its agent in degraded mode.
	var model llm.Client
	if cfg.ModelAPIKey != "" {
		model = llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.ModelAPIKey,
			BaseURL: cfg.ModelBaseURL,
			Log:     log,
		})
	}

	var bridge execution.Bridge
	if cfg.AlpacaKey != "" && cfg.AlpacaSecret != "" {
		bridge = execution.NewAlpacaBridge(execution.AlpacaConfig{
			APIKey:    cfg.AlpacaKey,
			APISecret: cfg.AlpacaSecret,
			BaseURL:   cfg.AlpacaBaseURL,
			Log:       log,
		})
	}

	source := signals.NewSyntheticSource(90, time.Now().UnixNano())

	svc := service.New(config.DefaultTraderConfig(), service.Deps{
		Model:   model,
		Signals: source,
		Prices:  source,
		Bridge:  bridge,
		Repo:    history.NewRepository(db.Conn(), log),
		Events:  events.NewManager(log),
		Log:     log,
	})

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if cfg.CycleSchedule != "" {
		if err := sched.AddJob(cfg.CycleSchedule, scheduler.NewCycleJob(svc, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register cycle job")
		}
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		Service: svc,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
