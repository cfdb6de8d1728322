package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level application configuration
type Config struct {
	DatabasePath  string
	LogLevel      string
	Port          int
	DevMode       bool
	ModelAPIKey   string
	ModelBaseURL  string
	CycleSchedule string // cron expression for scheduled cycles, empty disables
	AlpacaKey     string
	AlpacaSecret  string
	AlpacaBaseURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvAsInt("PORT", 8000),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		DatabasePath:  getEnv("DATABASE_PATH", "./data/ovtrader.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ModelAPIKey:   getEnv("MODEL_API_KEY", os.Getenv("OPENAI_API_KEY")),
		ModelBaseURL:  getEnv("MODEL_BASE_URL", ""),
		CycleSchedule: getEnv("CYCLE_SCHEDULE", ""),
		AlpacaKey:     getEnv("APCA_API_KEY_ID", ""),
		AlpacaSecret:  getEnv("APCA_API_SECRET_KEY", ""),
		AlpacaBaseURL: getEnv("APCA_API_BASE_URL", "https://paper-api.alpaca.markets"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
