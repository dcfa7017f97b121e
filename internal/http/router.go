// Package http exposes the selector monitor and the demo workspace over gin.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guttosm/selectorcache/internal/metrics"
	"github.com/guttosm/selectorcache/internal/middleware"
)

// RouteGroup registers a set of routes on an API group.
type RouteGroup interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterConfig holds router configuration options.
type RouterConfig struct {
	CORSOrigins []string
}

// NewRouter creates the gin engine with the middleware stack, infrastructure routes
// and the given API groups mounted under /api/v1.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig, groups ...RouteGroup) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)

	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	for _, g := range groups {
		g.RegisterRoutes(api)
	}

	return router
}
