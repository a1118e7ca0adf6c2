// Package config provides configuration loading from environment
// and defaults for the MES dashboard engine.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the value of key from the environment, or defaultValue if unset or empty.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

// GetEnvDuration returns the duration for key, or defaultValue if unset/invalid.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetEnvInt returns the integer for key, or defaultValue if unset/invalid.
func GetEnvInt(key string, defaultValue int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}
	return n
}

// DashboardConfig holds configuration for the dashboard engine and its HTTP API.
type DashboardConfig struct {
	HTTPAddr        string
	BackendEndpoint string
	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	RowLimit        int
	KnowledgeFile   string
	ShutdownTimeout time.Duration
}

// DefaultDashboardConfig returns dashboard config from environment with defaults.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		HTTPAddr:        GetEnv("HTTP_ADDR", ":8090"),
		BackendEndpoint: GetEnv("MES_BACKEND_ENDPOINT", "http://localhost:8000"),
		FetchTimeout:    GetEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		RefreshInterval: GetEnvDuration("REFRESH_INTERVAL", 5*time.Second),
		RowLimit:        GetEnvInt("ROW_LIMIT", 200),
		KnowledgeFile:   GetEnv("KNOWLEDGE_FILE", ""),
		ShutdownTimeout: GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}
