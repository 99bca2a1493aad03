package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type SSEClient struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Channels  map[string]bool
	Outbound  chan SSEMessage
	Logger    *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the hub has let go of the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
