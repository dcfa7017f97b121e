package app

import (
	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/logger"
)

// InitializeLogger configures the global logger.
func InitializeLogger(cfg config.LogConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Pretty)
}
