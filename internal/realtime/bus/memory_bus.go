package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
)

// memoryBus delivers within one process. It backs single-instance deploys
// where sessions live in the memory store anyway.
type memoryBus struct {
	log *logger.Logger

	mu     sync.Mutex
	subs   map[int]chan realtime.SSEMessage
	nextID int
	closed bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &memoryBus{log: log.With("service", "MemoryCartBus"), subs: map[int]chan realtime.SSEMessage{}}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("bus closed")
	}
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			b.log.Warn("dropping cart event; forwarder backlog full", "channel", msg.Channel)
		}
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus closed")
	}
	id := b.nextID
	b.nextID++
	ch := make(chan realtime.SSEMessage, 64)
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}
