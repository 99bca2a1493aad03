package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
)

const readyTimeout = 2 * time.Second

// sessionPinger is satisfied by the redis-backed session store. The
// in-process store has no Ping and is always ready.
type sessionPinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	sessions kvstore.Store
}

// NewHealthHandler takes the session store so /readyz can tell a load
// balancer when carts cannot be read or saved.
func NewHealthHandler(sessions kvstore.Store) *HealthHandler { return &HealthHandler{sessions: sessions} }

// GET /healthcheck is liveness only.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	p, ok := h.sessions.(sessionPinger)
	if !ok {
		c.String(http.StatusOK, "ready")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "session storage unavailable")
		return
	}
	c.String(http.StatusOK, "ready")
}
