package realtime

type SSEEvent string

const (
	SSEEventCartChanged    SSEEvent = "CartChanged"
	SSEEventOrderCompleted SSEEvent = "OrderCompleted"
)

// SSEMessage is what travels over the bus and out to browsers. Channel is
// the session id the message belongs to.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// SessionChannel is the hub channel one browser session listens on.
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}
