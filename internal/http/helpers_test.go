package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/monitor"
	"github.com/guttosm/selectorcache/internal/store"
	"github.com/guttosm/selectorcache/internal/workspace"
)

type fixture struct {
	store     *store.Store
	selectors *workspace.Selectors
	monitor   *monitor.PerformanceMonitor
	router    *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(store.Seed(time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)))
	sel := workspace.New(config.SelectorConfig{MaxCacheSize: 1, ParameterizedMaxCacheSize: 10, EnableMonitoring: true})
	mon := monitor.New(monitor.DefaultConfig())
	sel.Register(mon)

	router := NewRouter(NewHealthHandler(), RouterConfig{},
		NewSelectorHandler(mon),
		NewWorkspaceHandler(st, sel),
	)
	return &fixture{store: st, selectors: sel, monitor: mon, router: router}
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// envelope decodes a dto.SuccessResponse whose data has type T.
type envelope[T any] struct {
	Data      T      `json:"data"`
	RequestID string `json:"request_id"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.RequestID)
	return env.Data
}
