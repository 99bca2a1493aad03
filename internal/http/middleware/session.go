package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/platform/ctxutil"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

const DefaultSessionCookie = "bh_session"

type SessionMiddleware struct {
	log        *logger.Logger
	sessions   services.SessionService
	cookieName string
	secure     bool
}

func NewSessionMiddleware(log *logger.Logger, sessions services.SessionService, cookieName string, secure bool) *SessionMiddleware {
	if strings.TrimSpace(cookieName) == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionMiddleware{
		log:        log.With("Middleware", "SessionMiddleware"),
		sessions:   sessions,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Attach resolves the browser session from its cookie, starting a new one
// when the cookie is missing, expired or forged.
func (sm *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sm.cookieName)
		sessionID, err := sm.sessions.Parse(token)
		fresh := false
		if err != nil {
			if token != "" {
				sm.log.Debug("discarding session cookie", "error", err)
			}
			id, newToken, issueErr := sm.sessions.Issue(c.Request.Context())
			if issueErr != nil {
				sm.log.Error("issue session failed", "error", issueErr)
				response.RespondError(c, http.StatusInternalServerError, "session_unavailable", issueErr)
				c.Abort()
				return
			}
			sm.SetCookie(c, newToken)
			sessionID, fresh = id, true
		}

		ctx := ctxutil.WithSessionData(c.Request.Context(), &ctxutil.SessionData{
			SessionID: sessionID,
			Fresh:     fresh,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("session_id", sessionID.String())
		c.Next()
	}
}

// SetCookie writes a browser-session cookie: no Max-Age, so it is dropped
// when the browser closes.
func (sm *SessionMiddleware) SetCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sm *SessionMiddleware) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
