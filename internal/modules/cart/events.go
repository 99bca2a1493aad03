package cart

import (
	"context"
	"time"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
)

const (
	EventCartChanged    = "cart.changed"
	EventOrderCompleted = "order.completed"
)

// Event asks whatever renders the cart (badge, modal) to refresh.
type Event struct {
	Kind      string           `json:"kind"`
	SessionID string           `json:"session_id"`
	Op        string           `json:"op,omitempty"`
	Count     int              `json:"count"`
	Total     storefront.Money `json:"total"`
	At        time.Time        `json:"at"`
}

// Notifier receives refresh events after a committed mutation. Delivery is
// best effort; implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Confirmer gates destructive actions. A nil Confirmer never confirms.
type Confirmer interface {
	Confirm(ctx context.Context) bool
}

type ConfirmFunc func(ctx context.Context) bool

func (f ConfirmFunc) Confirm(ctx context.Context) bool { return f(ctx) }

// Confirmed wraps an answer already collected from the user.
func Confirmed(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context) bool { return yes })
}
