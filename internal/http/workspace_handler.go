package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/internal/domain/dto"
	"github.com/guttosm/selectorcache/internal/middleware"
	"github.com/guttosm/selectorcache/internal/store"
	"github.com/guttosm/selectorcache/internal/workspace"
)

// WorkspaceHandler serves selector outputs for the current snapshot.
type WorkspaceHandler struct {
	store     *store.Store
	selectors *workspace.Selectors
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(st *store.Store, sel *workspace.Selectors) *WorkspaceHandler {
	return &WorkspaceHandler{store: st, selectors: sel}
}

// RegisterRoutes registers the workspace routes on rg.
func (h *WorkspaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/workspace")
	ws.GET("", h.Dashboard)
	ws.GET("/agents/:id", h.Agent)
}

// Dashboard handles GET /api/v1/workspace.
func (h *WorkspaceHandler) Dashboard(c *gin.Context) {
	view, err := h.selectors.View(h.store.Snapshot())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccess(view, middleware.GetRequestID(c)))
}

// Agent handles GET /api/v1/workspace/agents/:id.
func (h *WorkspaceHandler) Agent(c *gin.Context) {
	id := c.Param("id")
	view, found, err := h.selectors.Agent(h.store.Snapshot(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, dto.NewError(dto.ErrCodeNotFound, "agent not found").
			WithDetail("id", id).
			WithRequestID(middleware.GetRequestID(c)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccess(view, middleware.GetRequestID(c)))
}
