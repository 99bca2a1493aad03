package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/platform/ctxutil"
)

// requireSession returns the request's session id, answering 401 when the
// session middleware did not run.
func requireSession(c *gin.Context) (uuid.UUID, bool) {
	id := ctxutil.SessionID(c.Request.Context())
	if id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, response.ErrorEnvelope{
			Error: response.APIError{Message: "missing session", Code: "no_session"},
		})
		return uuid.Nil, false
	}
	return id, true
}
