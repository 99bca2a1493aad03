// Package cart owns a session's line items and the order-processed flag that
// sits beside them in session storage.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/keymutex"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

// Session storage keys, relative to the session namespace.
const (
	KeyCart           = "cart"
	KeyOrderProcessed = "order_processed"

	flagTrue = "true"
)

var (
	ErrMalformed      = errors.New("cart: malformed persisted data")
	ErrItemIDRequired = errors.New("cart: item id is required")
)

type Deps struct {
	Log      *logger.Logger
	Backend  kvstore.Store
	Locks    *keymutex.KeyMutex
	Notifier Notifier
	Metrics  *observability.Metrics

	// ResetOrderFlagOnClear makes a confirmed clear also drop the
	// order-processed flag, so the session may order again.
	ResetOrderFlagOnClear bool

	Now func() time.Time
}

// Carts hands out per-session Stores over one shared backend.
type Carts struct {
	deps Deps
}

func NewCarts(deps Deps) *Carts {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Locks == nil {
		deps.Locks = keymutex.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Log = deps.Log.With("service", "CartStore")
	return &Carts{deps: deps}
}

// Open returns the Store for one session. It is cheap; nothing is read until
// an operation runs.
func (c *Carts) Open(sessionID string) *Store {
	return &Store{
		deps:      c.deps,
		sessionID: sessionID,
		kv:        kvstore.Scope(c.deps.Backend, kvstore.SessionNamespace(sessionID)),
		log:       c.deps.Log.With("session_id", sessionID),
	}
}

// End drops every key the session owns: cart and flag alike.
func (c *Carts) End(ctx context.Context, sessionID string) error {
	s := c.Open(sessionID)
	unlock := c.deps.Locks.Lock(sessionID)
	defer unlock()
	if err := s.kv.Clear(ctx, KeyCart, KeyOrderProcessed); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.notify(ctx, EventCartChanged, "end", nil)
	return nil
}

type Store struct {
	deps      Deps
	sessionID string
	kv        *kvstore.Scoped
	log       *logger.Logger
}

func (s *Store) SessionID() string { return s.sessionID }

// State is one consistent read of the session: items plus flag.
type State struct {
	Items          []storefront.LineItem
	OrderProcessed bool
}

// sessionKeys are read, refreshed and expire together.
var sessionKeys = []string{KeyCart, KeyOrderProcessed}

// Transact runs fn with the session locked. fn sees the current state and
// returns the writes to commit as one unit; returning no ops commits nothing.
// On a Transactor backend a write by another process between the read and
// the commit reruns fn against the fresh state.
func (s *Store) Transact(ctx context.Context, fn func(State) ([]kvstore.Op, error)) error {
	unlock := s.deps.Locks.Lock(s.sessionID)
	defer unlock()

	var fnErr error
	err := s.kv.Transact(ctx, sessionKeys, func(read kvstore.ReadFunc) ([]kvstore.Op, error) {
		ops, err := fn(s.readState(read))
		fnErr = err
		return ops, err
	})
	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		return fnErr
	default:
		return fmt.Errorf("commit session state: %w", err)
	}
}

// GetCart never fails: absent, unreadable or corrupt data reads as empty.
func (s *Store) GetCart(ctx context.Context) []storefront.LineItem {
	return s.loadState(ctx).Items
}

// AddItem merges on id: an existing entry gains one quantity and keeps its
// first-seen fields, a new id is appended with quantity 1. The returned
// entry is what the cart holds for that id once saved; saved is false when
// the write was lost to a storage failure, which is logged and absorbed.
func (s *Store) AddItem(ctx context.Context, item storefront.NewItem) (storefront.LineItem, bool, error) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return storefront.LineItem{}, false, ErrItemIDRequired
	}
	ctx, span := observability.StartSpan(ctx, "cart.AddItem", attribute.String("item.id", id))

	var result storefront.LineItem
	var items []storefront.LineItem
	err := s.Transact(ctx, func(st State) ([]kvstore.Op, error) {
		items = st.Items
		idx := indexOf(items, id)
		if idx >= 0 {
			items[idx].Quantity = items[idx].EffectiveQuantity() + 1
			result = items[idx]
		} else {
			result = storefront.LineItem{
				ID:       id,
				Title:    item.Title,
				Author:   item.Author,
				Price:    item.Price,
				Quantity: 1,
				Image:    item.Image,
			}
			items = append(items, result)
		}
		op, err := encodeItems(items)
		if err != nil {
			return nil, err
		}
		return []kvstore.Op{op}, nil
	})
	s.finishMutation(ctx, "add", items, err)
	observability.EndSpan(span, err)
	return result, err == nil, nil
}

// RemoveItem drops the whole entry for id. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	ctx, span := observability.StartSpan(ctx, "cart.RemoveItem", attribute.String("item.id", id))

	var items []storefront.LineItem
	changed := false
	err := s.Transact(ctx, func(st State) ([]kvstore.Op, error) {
		items = st.Items
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, nil
		}
		changed = true
		items = append(items[:idx], items[idx+1:]...)
		op, err := encodeItems(items)
		if err != nil {
			return nil, err
		}
		return []kvstore.Op{op}, nil
	})
	if changed || err != nil {
		s.finishMutation(ctx, "remove", items, err)
	}
	observability.EndSpan(span, err)
}

// ClearCart removes the persisted cart once confirm agrees. confirmed is
// false when the confirmation was declined, which is not an error; saved is
// false when a confirmed clear was lost to a storage failure.
func (s *Store) ClearCart(ctx context.Context, confirm Confirmer) (confirmed, saved bool) {
	if confirm == nil || !confirm.Confirm(ctx) {
		s.log.Debug("clear cart not confirmed")
		return false, false
	}
	ctx, span := observability.StartSpan(ctx, "cart.ClearCart")

	err := s.Transact(ctx, func(State) ([]kvstore.Op, error) {
		ops := []kvstore.Op{kvstore.RemoveOp(KeyCart)}
		if s.deps.ResetOrderFlagOnClear {
			ops = append(ops, kvstore.RemoveOp(KeyOrderProcessed))
		}
		return ops, nil
	})
	s.finishMutation(ctx, "clear", nil, err)
	observability.EndSpan(span, err)
	return true, err == nil
}

// TotalCount is the badge number: the sum of quantities.
func (s *Store) TotalCount(ctx context.Context) int {
	return TotalCount(s.GetCart(ctx))
}

// OrderProcessed reads the session flag; unreadable reads as false.
func (s *Store) OrderProcessed(ctx context.Context) bool {
	return s.loadState(ctx).OrderProcessed
}

// Notify publishes a refresh event for the session's current cart.
func (s *Store) Notify(ctx context.Context, kind, op string, items []storefront.LineItem) {
	s.notify(ctx, kind, op, items)
}

func (s *Store) finishMutation(ctx context.Context, op string, items []storefront.LineItem, err error) {
	if err != nil {
		// Absorbed: the caller sees the cart as storage now holds it.
		s.deps.Metrics.IncStorageError("write")
		s.log.Warn("cart write failed", "op", op, "key", KeyCart, "error", err)
		return
	}
	s.deps.Metrics.IncCartMutation(op)
	s.notify(ctx, EventCartChanged, op, items)
}

func (s *Store) notify(ctx context.Context, kind, op string, items []storefront.LineItem) {
	if s.deps.Notifier == nil {
		return
	}
	s.deps.Notifier.Notify(ctx, Event{
		Kind:      kind,
		SessionID: s.sessionID,
		Op:        op,
		Count:     TotalCount(items),
		Total:     ComputeTotal(items),
		At:        s.deps.Now().UTC(),
	})
}

// loadState is a read-only transaction, so every read keeps the cart and the
// flag sliding toward the same expiry.
func (s *Store) loadState(ctx context.Context) State {
	var st State
	err := s.Transact(ctx, func(cur State) ([]kvstore.Op, error) {
		st = cur
		return nil, nil
	})
	if err != nil {
		s.deps.Metrics.IncStorageError("read")
		s.log.Warn("session read failed, treating as empty", "error", err)
		return State{Items: []storefront.LineItem{}}
	}
	return st
}

func (s *Store) readState(read kvstore.ReadFunc) State {
	return State{Items: s.loadItems(read), OrderProcessed: s.loadFlag(read)}
}

func (s *Store) loadItems(read kvstore.ReadFunc) []storefront.LineItem {
	raw, ok, err := read(KeyCart)
	if err != nil {
		s.deps.Metrics.IncStorageError("read")
		s.log.Warn("cart read failed, treating as empty", "key", KeyCart, "error", err)
		return []storefront.LineItem{}
	}
	if !ok {
		return []storefront.LineItem{}
	}
	items, err := decodeItems(raw)
	if err != nil {
		s.deps.Metrics.IncStorageError("malformed")
		s.log.Warn("cart data unreadable, treating as empty", "key", KeyCart, "error", err)
		return []storefront.LineItem{}
	}
	return items
}

func (s *Store) loadFlag(read kvstore.ReadFunc) bool {
	raw, ok, err := read(KeyOrderProcessed)
	if err != nil {
		s.deps.Metrics.IncStorageError("read")
		s.log.Warn("order flag read failed, treating as unset", "key", KeyOrderProcessed, "error", err)
		return false
	}
	return ok && raw == flagTrue
}

// FlagSetOp is the write that marks the session's order as processed.
func FlagSetOp() kvstore.Op { return kvstore.SetOp(KeyOrderProcessed, flagTrue) }

// CartRemoveOp drops the persisted cart record entirely.
func CartRemoveOp() kvstore.Op { return kvstore.RemoveOp(KeyCart) }

func decodeItems(raw string) ([]storefront.LineItem, error) {
	var items []storefront.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// Stored data may predate the merge rule; fold duplicates back together.
	out := make([]storefront.LineItem, 0, len(items))
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			continue
		}
		if idx := indexOf(out, it.ID); idx >= 0 {
			out[idx].Quantity += it.EffectiveQuantity()
			continue
		}
		it.Quantity = it.EffectiveQuantity()
		out = append(out, it)
	}
	return out, nil
}

func encodeItems(items []storefront.LineItem) (kvstore.Op, error) {
	if items == nil {
		items = []storefront.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return kvstore.Op{}, fmt.Errorf("encode cart: %w", err)
	}
	return kvstore.SetOp(KeyCart, string(b)), nil
}

func indexOf(items []storefront.LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
