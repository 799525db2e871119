package config

import (
	"os"
	"strconv"
	"strings"

	"pdf-extract-service/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	LogLevel           string
	MaxFileSize        int64
	CacheCapacity      int
	ExtractConcurrency int
	AllowedOrigins     []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 100*1024*1024), // 100MB default
		CacheCapacity:      getEnvIntOrDefault("CACHE_CAPACITY", 16),
		ExtractConcurrency: getEnvIntOrDefault("EXTRACT_CONCURRENCY", 4),
		AllowedOrigins:     getEnvListOrDefault("ALLOWED_ORIGINS", []string{"*"}),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetMaxFileSize returns the maximum PDF file size accepted
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetCacheCapacity returns how many document handles to keep cached
func (c *AppConfig) GetCacheCapacity() int {
	return c.CacheCapacity
}

// GetExtractConcurrency returns the per-call page decoding parallelism
func (c *AppConfig) GetExtractConcurrency() int {
	return c.ExtractConcurrency
}

// GetAllowedOrigins returns the CORS allowed origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
