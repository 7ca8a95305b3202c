package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Parser    ParserConfig
	Validator ValidatorConfig
	LLM       LLMConfig
	Batch     BatchConfig
}

// ParserConfig holds detector selection thresholds.
type ParserConfig struct {
	MinConfidence  float64 // a detector below this is never selected
	TableThreshold float64 // minimum item-table score for SelectBest
}

// ValidatorConfig holds tolerances for the post-parse validation passes.
type ValidatorConfig struct {
	AbsTolerance     float64 // absolute amount tolerance for total mismatch
	RelTolerance     float64 // relative tolerance for total mismatch (0.02 = 2%)
	ItemTolerancePct float64 // per-item qty*price vs total tolerance
	MaxQty           float64 // qty above this is flagged as suspicious
}

// LLMConfig holds configuration for the LLM-assisted fallback detector.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// BatchConfig holds worker pool sizing for batch runs.
type BatchConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Enabled reports whether the LLM detector has credentials to run.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MinConfidence:  getEnvAsFloat("PARSER_MIN_CONFIDENCE", 0.3),
			TableThreshold: getEnvAsFloat("TABLE_SCORE_THRESHOLD", 0.3),
		},
		Validator: ValidatorConfig{
			AbsTolerance:     getEnvAsFloat("TOTAL_ABS_TOLERANCE", 0.05),
			RelTolerance:     getEnvAsFloat("TOTAL_REL_TOLERANCE", 0.02),
			ItemTolerancePct: getEnvAsFloat("ITEM_TOLERANCE_PCT", 0.02),
			MaxQty:           getEnvAsFloat("MAX_ITEM_QTY", 100000),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Batch: BatchConfig{
			Workers:   getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize: getEnvAsInt("BATCH_QUEUE_SIZE", 256),
			Timeout:   getEnvAsDuration("BATCH_TIMEOUT", 3*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
