// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/allocation"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	Pretty   bool

	DatabasePath    string
	RetentionDays   int
	CleanupSchedule string

	Objective            string
	RiskFreeRate         float64
	RebalancingThreshold float64
	TransactionCostModel string
	TimeHorizonYears     int
	IncludeAlternatives  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnvAsInt("PORT", 8090),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Pretty:   getEnvAsBool("LOG_PRETTY", false),

		DatabasePath:    getEnv("DATABASE_PATH", "./data/recommendations.db"),
		RetentionDays:   getEnvAsInt("RETENTION_DAYS", 365),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"), // 3 AM daily

		Objective:            getEnv("OBJECTIVE", string(domain.ObjectiveMaxDiversification)),
		RiskFreeRate:         getEnvAsFloat("RISK_FREE_RATE", allocation.DefaultRiskFreeRate),
		RebalancingThreshold: getEnvAsFloat("REBALANCING_THRESHOLD", allocation.DefaultRebalancingThreshold),
		TransactionCostModel: getEnv("TRANSACTION_COST_MODEL", string(domain.CostModelPercentage)),
		TimeHorizonYears:     getEnvAsInt("TIME_HORIZON_YEARS", allocation.DefaultTimeHorizonYears),
		IncludeAlternatives:  getEnvAsBool("INCLUDE_ALTERNATIVES", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and coherent
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if !domain.Objective(c.Objective).Valid() {
		return fmt.Errorf("OBJECTIVE %q is not one of %s", c.Objective, objectiveNames())
	}
	model := domain.TransactionCostModel(c.TransactionCostModel)
	if model != domain.CostModelFixed && model != domain.CostModelPercentage {
		return fmt.Errorf("TRANSACTION_COST_MODEL must be FIXED or PERCENTAGE, got %q", c.TransactionCostModel)
	}
	return nil
}

// EngineConfig maps the environment settings onto the allocation engine.
func (c *Config) EngineConfig() allocation.EngineConfig {
	return allocation.EngineConfig{
		Objective:            domain.Objective(c.Objective),
		RiskFreeRate:         c.RiskFreeRate,
		RebalancingThreshold: c.RebalancingThreshold,
		TransactionCostModel: domain.TransactionCostModel(c.TransactionCostModel),
		TimeHorizonYears:     c.TimeHorizonYears,
		IncludeAlternatives:  c.IncludeAlternatives,
	}
}

func objectiveNames() string {
	names := make([]string, len(domain.AllObjectives))
	for i, objective := range domain.AllObjectives {
		names[i] = string(objective)
	}
	return strings.Join(names, ", ")
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
