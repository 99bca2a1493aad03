// Package order turns a session's non-empty cart into a completed order,
// at most once per session.
package order

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

// ErrStorageFailure means the completion writes could not be committed.
// Neither the flag nor the cart changed.
var ErrStorageFailure = errors.New("order: session storage failure")

type Kind string

const (
	Success          Kind = "success"
	EmptyCart        Kind = "empty_cart"
	AlreadyProcessed Kind = "already_processed"
)

type Outcome struct {
	Kind  Kind
	Total storefront.Money // set on Success only
}

// CloseCart reports whether the UI should dismiss its cart review surface.
func (o Outcome) CloseCart() bool { return o.Kind == Success }

// Message is the user-facing text for the outcome.
func (o Outcome) Message(storeName, currencySymbol string) string {
	switch o.Kind {
	case Success:
		return fmt.Sprintf("Order processed successfully!\nTotal: %s\nThank you for shopping at %s!",
			o.Total.Format(currencySymbol), storeName)
	case EmptyCart:
		return "Your cart is empty. Add some books first!"
	case AlreadyProcessed:
		return "Your order has already been processed!"
	default:
		return ""
	}
}

type Deps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
}

type Processor struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewProcessor(deps Deps) *Processor {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{log: log.With("service", "OrderProcessor"), metrics: deps.Metrics}
}

// ProcessOrder checks for an empty cart first, then the session flag. On
// success the flag is set and the cart removed in one commit.
func (p *Processor) ProcessOrder(ctx context.Context, store *cart.Store) (Outcome, error) {
	ctx, span := observability.StartSpan(ctx, "order.ProcessOrder")

	var out Outcome
	err := store.Transact(ctx, func(st cart.State) ([]kvstore.Op, error) {
		if len(st.Items) == 0 {
			out = Outcome{Kind: EmptyCart}
			return nil, nil
		}
		if st.OrderProcessed {
			out = Outcome{Kind: AlreadyProcessed}
			return nil, nil
		}
		out = Outcome{Kind: Success, Total: cart.ComputeTotal(st.Items)}
		return []kvstore.Op{cart.FlagSetOp(), cart.CartRemoveOp()}, nil
	})
	if err != nil {
		p.log.Error("order commit failed", "session_id", store.SessionID(), "error", err)
		p.metrics.ObserveOrder("storage_failure", 0)
		observability.EndSpan(span, err)
		return Outcome{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	span.SetAttributes(attribute.String("order.outcome", string(out.Kind)))
	p.metrics.ObserveOrder(string(out.Kind), out.Total.Float64())
	if out.Kind == Success {
		p.log.Info("order processed", "session_id", store.SessionID(), "total", out.Total.Decimal())
		store.Notify(ctx, cart.EventOrderCompleted, "order", nil)
	}
	observability.EndSpan(span, nil)
	return out, nil
}
