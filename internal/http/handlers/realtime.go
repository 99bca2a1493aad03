package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// GET /api/cart/events streams CartChanged/OrderCompleted for the caller's
// session. Every open tab gets its own client.
func (h *RealtimeHandler) CartEvents(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}
	client := h.Hub.NewSSEClient(sessionID)
	h.Hub.AddChannel(client, realtime.SessionChannel(sessionID.String()))
	defer h.Hub.CloseClient(client)

	h.Log.Debug("cart event stream open", "session_id", sessionID.String(), "client_id", client.ID.String())
	h.Hub.ServeHTTP(c.Writer, c.Request, client)
	h.Log.Debug("cart event stream closed", "session_id", sessionID.String(), "client_id", client.ID.String())
}
