package app

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/http"
	"github.com/guttosm/selectorcache/internal/monitor"
	"github.com/guttosm/selectorcache/internal/store"
	"github.com/guttosm/selectorcache/internal/workspace"
)

var (
	errNoSnapshot      = errors.New("no workspace snapshot published")
	errMonitorDisabled = errors.New("monitor is disabled")
)

// InitializeRouter builds the handlers, the readiness checks and the gin engine.
func InitializeRouter(cfg config.Config, st *store.Store, sel *workspace.Selectors, mon *monitor.PerformanceMonitor) *gin.Engine {
	healthHandler := http.NewHealthHandler()
	healthHandler.RegisterChecker("store", http.CheckFunc(func() error {
		if st.Snapshot() == nil {
			return errNoSnapshot
		}
		return nil
	}))
	if cfg.Monitor.Enabled {
		healthHandler.RegisterChecker("monitor", http.CheckFunc(func() error {
			if !mon.Enabled() {
				return errMonitorDisabled
			}
			return nil
		}))
	}

	return http.NewRouter(healthHandler,
		http.RouterConfig{CORSOrigins: cfg.Server.CORSOrigins},
		http.NewSelectorHandler(mon),
		http.NewWorkspaceHandler(st, sel),
	)
}
