package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/achievemate/gradeflow/internal/logger"
)

type Config struct {
	// Backend Configuration
	BackendBaseURL string
	OCRBaseURL     string

	// Curriculum matching knobs. The threshold and cap are institutional
	// conventions, not derived from data, so they stay configurable.
	MatchSimilarityThreshold float64
	MatchSuggestionLimit     int

	// Duplicate guard policy. When true, an unreachable or malformed
	// duplicate-check response is treated as "no duplicates".
	DuplicateCheckFailOpen bool

	// Curriculum snapshot cache TTL in seconds
	CurriculumCacheTTL int

	// HTTP server (serve command)
	ServerAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		BackendBaseURL:           getEnv("BACKEND_BASE_URL", ""),
		OCRBaseURL:               getEnv("OCR_BASE_URL", ""),
		MatchSimilarityThreshold: getEnvFloat("MATCH_SIMILARITY_THRESHOLD", 0.3),
		MatchSuggestionLimit:     getEnvInt("MATCH_SUGGESTION_LIMIT", 3),
		DuplicateCheckFailOpen:   getEnvBool("DUPLICATE_CHECK_FAIL_OPEN", true),
		CurriculumCacheTTL:       getEnvInt("CURRICULUM_CACHE_TTL", 300),
		ServerAddr:               getEnv("SERVER_ADDR", ":8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:            getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.MatchSimilarityThreshold < 0 || c.MatchSimilarityThreshold > 1 {
		return fmt.Errorf("MATCH_SIMILARITY_THRESHOLD must be in [0,1]")
	}
	if c.MatchSuggestionLimit < 1 {
		return fmt.Errorf("MATCH_SUGGESTION_LIMIT must be at least 1")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
