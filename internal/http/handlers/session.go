package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/platform/ctxutil"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

// CookieClearer drops the session cookie from the browser.
type CookieClearer interface {
	ClearCookie(c *gin.Context)
}

type SessionHandler struct {
	sessions services.SessionService
	carts    *cart.Carts
	cookies  CookieClearer
}

func NewSessionHandler(sessions services.SessionService, carts *cart.Carts, cookies CookieClearer) *SessionHandler {
	return &SessionHandler{sessions: sessions, carts: carts, cookies: cookies}
}

// GET /api/session
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	store := h.carts.Open(id.String())
	sd := ctxutil.GetSessionData(c.Request.Context())
	response.RespondOK(c, gin.H{
		"session_id":      id.String(),
		"fresh":           sd != nil && sd.Fresh,
		"count":           store.TotalCount(c.Request.Context()),
		"order_processed": store.OrderProcessed(c.Request.Context()),
	})
}

// DELETE /api/session
func (h *SessionHandler) End(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.sessions.End(c.Request.Context(), id); err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "session_storage_failure", err)
		return
	}
	if h.cookies != nil {
		h.cookies.ClearCookie(c)
	}
	response.RespondOK(c, gin.H{"ended": true})
}
