package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database and cache connectivity.
type HealthHandler struct {
	db      Pinger
	cache   Pinger
	logger  *zap.Logger
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger, started: time.Now(), now: time.Now}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// Health godoc
// @Summary Health check
// @Description Pings the database. Cache state is reported but never fails the check.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	now := h.now()
	resp := HealthResponse{
		Status:    "OK",
		Database:  "connected",
		Timestamp: now,
		Uptime:    now.Sub(h.started).Seconds(),
	}

	if h.cache != nil {
		resp.Cache = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "disconnected"
			h.logger.Warn("health: cache unreachable", zap.Error(err))
		}
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health: database unreachable", zap.Error(err))
		resp.Status = "ERROR"
		resp.Database = "disconnected"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
