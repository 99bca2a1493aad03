package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type sessionDataKey struct{}

// SessionData identifies the browser session a request belongs to.
type SessionData struct {
	SessionID uuid.UUID
	// Fresh is true when the session was minted for this request.
	Fresh bool
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		return sd
	}
	return nil
}

// SessionID returns uuid.Nil when the context carries no session.
func SessionID(ctx context.Context) uuid.UUID {
	if sd := GetSessionData(ctx); sd != nil {
		return sd.SessionID
	}
	return uuid.Nil
}
