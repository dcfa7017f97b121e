// Package app wires the selector service together.
package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/logger"
	"github.com/guttosm/selectorcache/internal/monitor"
	"github.com/guttosm/selectorcache/internal/store"
	"github.com/guttosm/selectorcache/internal/workspace"
)

// App holds the wired components.
type App struct {
	Router    *gin.Engine
	Store     *store.Store
	Selectors *workspace.Selectors
	Monitor   *monitor.PerformanceMonitor
	Driver    *Driver

	cfg         config.Config
	unsubscribe func()
}

// InitializeApp creates and wires all application dependencies. Nothing runs until Start.
func InitializeApp(cfg config.Config) *App {
	InitializeLogger(cfg.Log)

	st := store.New(store.Seed(time.Now()))
	sel := workspace.New(cfg.Selector)

	monCfg := monitor.DefaultConfig()
	monCfg.Interval = cfg.Monitor.Interval
	monCfg.SlowThreshold = cfg.Monitor.SlowThreshold
	monCfg.HistorySize = cfg.Monitor.HistorySize
	mon := monitor.New(monCfg)
	sel.Register(mon)

	log := logger.WithContext(map[string]interface{}{
		"component":       "app",
		"monitor_enabled": cfg.Monitor.Enabled,
		"demo_tick":       cfg.Demo.Tick.String(),
	})
	unsubscribe := mon.Subscribe(func(snap monitor.Snapshot) {
		log.Debug().
			Int64("total_calls", snap.TotalCalls).
			Int("active_selectors", snap.ActiveSelectors).
			Strs("slow", snap.SlowSelectors).
			Strs("inefficient", snap.InefficientSelectors).
			Msg("Selector collection")
	})
	log.Info().Strs("selectors", mon.Registered()).Msg("Application initialized")

	return &App{
		Router:      InitializeRouter(cfg, st, sel, mon),
		Store:       st,
		Selectors:   sel,
		Monitor:     mon,
		Driver:      NewDriver(st, sel, uint64(time.Now().UnixNano())),
		cfg:         cfg,
		unsubscribe: unsubscribe,
	}
}

// Start enables periodic collection when configured and starts the demo driver.
func (a *App) Start() {
	if a.cfg.Monitor.Enabled {
		a.Monitor.Enable(a.cfg.Monitor.Interval)
	}
	a.Driver.Start(a.cfg.Demo.Tick)
}

// Stop halts the driver, then the monitor.
func (a *App) Stop() {
	a.Driver.Stop()
	a.Monitor.Disable()
	a.unsubscribe()
}
