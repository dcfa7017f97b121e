package http

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/internal/domain/dto"
	"github.com/guttosm/selectorcache/internal/middleware"
	"github.com/guttosm/selectorcache/internal/monitor"
)

// SelectorHandler exposes the performance monitor.
type SelectorHandler struct {
	monitor *monitor.PerformanceMonitor
}

// NewSelectorHandler creates a SelectorHandler.
func NewSelectorHandler(m *monitor.PerformanceMonitor) *SelectorHandler {
	return &SelectorHandler{monitor: m}
}

// RegisterRoutes registers the selector routes on rg.
func (h *SelectorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	selectors := rg.Group("/selectors")
	selectors.GET("", h.Current)
	selectors.GET("/report", h.Report)
	selectors.GET("/:name/history", h.History)
	selectors.POST("/reset", h.Reset)
}

// Current handles GET /api/v1/selectors.
//
// The latest snapshot is returned; ?collect=true runs a pass first.
func (h *SelectorHandler) Current(c *gin.Context) {
	collect, err := strconv.ParseBool(c.DefaultQuery("collect", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError(dto.ErrCodeInvalidRequest, "collect: must be a boolean").
			WithRequestID(middleware.GetRequestID(c)))
		return
	}

	var snap monitor.Snapshot
	if collect {
		snap = h.monitor.Collect()
	} else {
		snap = h.monitor.CurrentMetrics()
	}

	c.JSON(http.StatusOK, dto.NewSuccess(gin.H{
		"state":    h.monitor.State().String(),
		"snapshot": snap,
	}, middleware.GetRequestID(c)))
}

// Report handles GET /api/v1/selectors/report.
func (h *SelectorHandler) Report(c *gin.Context) {
	c.String(http.StatusOK, h.monitor.PerformanceReport())
}

// History handles GET /api/v1/selectors/:name/history.
func (h *SelectorHandler) History(c *gin.Context) {
	name := c.Param("name")
	if !slices.Contains(h.monitor.Registered(), name) {
		c.JSON(http.StatusNotFound, dto.NewError(dto.ErrCodeNotFound, "selector is not registered").
			WithDetail("name", name).
			WithRequestID(middleware.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccess(gin.H{
		"name":    name,
		"history": h.monitor.SelectorHistory(name),
	}, middleware.GetRequestID(c)))
}

// Reset handles POST /api/v1/selectors/reset.
func (h *SelectorHandler) Reset(c *gin.Context) {
	h.monitor.ResetMetrics()
	middleware.Log(c).Info().Msg("Selector metrics reset")
	c.Status(http.StatusNoContent)
}
