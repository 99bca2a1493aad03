package services

import (
	"context"

	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
	"github.com/yungbote/bookhaven-backend/internal/realtime/bus"
)

type cartNotifier struct {
	log     *logger.Logger
	bus     bus.Bus
	metrics *observability.Metrics
}

// NewCartNotifier publishes cart refresh events on the bus, addressed to the
// session's SSE channel.
func NewCartNotifier(log *logger.Logger, b bus.Bus, metrics *observability.Metrics) cart.Notifier {
	return &cartNotifier{log: log.With("service", "CartNotifier"), bus: b, metrics: metrics}
}

func (n *cartNotifier) Notify(ctx context.Context, ev cart.Event) {
	if n.bus == nil {
		return
	}
	event := realtime.SSEEventCartChanged
	if ev.Kind == cart.EventOrderCompleted {
		event = realtime.SSEEventOrderCompleted
	}
	msg := realtime.SSEMessage{
		Channel: realtime.SessionChannel(ev.SessionID),
		Event:   event,
		Data:    ev,
	}
	if err := n.bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		n.metrics.IncBusPublish(ev.Kind, "error")
		n.log.Warn("cart event publish failed", "session_id", ev.SessionID, "kind", ev.Kind, "error", err)
		return
	}
	n.metrics.IncBusPublish(ev.Kind, "ok")
}
