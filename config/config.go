// Package config provides configuration management for the selector service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Selector SelectorConfig
	Monitor  MonitorConfig
	Demo     DemoConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// SelectorConfig holds defaults applied to every application selector.
type SelectorConfig struct {
	MaxCacheSize              int
	ParameterizedMaxCacheSize int
	EnableMonitoring          bool
}

// MonitorConfig holds performance monitor configuration.
type MonitorConfig struct {
	Enabled       bool
	Interval      time.Duration
	SlowThreshold time.Duration
	HistorySize   int
}

// DemoConfig controls the synthetic state transitions of the demo workspace.
type DemoConfig struct {
	Tick time.Duration
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Selector: SelectorConfig{
			MaxCacheSize:              getEnvInt("SELECTOR_MAX_CACHE_SIZE", 1),
			ParameterizedMaxCacheSize: getEnvInt("SELECTOR_PARAM_MAX_CACHE_SIZE", 10),
			EnableMonitoring:          getEnvBool("SELECTOR_MONITORING", true),
		},
		Monitor: MonitorConfig{
			Enabled:       getEnvBool("MONITOR_ENABLED", true),
			Interval:      getEnvDuration("MONITOR_INTERVAL", 5*time.Second),
			SlowThreshold: getEnvDuration("MONITOR_SLOW_THRESHOLD", time.Millisecond),
			HistorySize:   getEnvInt("MONITOR_HISTORY_SIZE", 100),
		},
		Demo: DemoConfig{
			Tick: getEnvDuration("DEMO_TICK", 500*time.Millisecond),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
