// Package kvstore is the session-scoped key/value storage the cart and order
// state persist into. Values are opaque strings; callers own the encoding.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable marks a backend failure (connection refused, timeout, closed store).
var ErrUnavailable = errors.New("kvstore: storage unavailable")

type Store interface {
	// Get reports ok=false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
}

// Batcher is implemented by stores that apply several writes all-or-nothing.
type Batcher interface {
	Apply(ctx context.Context, ops ...Op) error
}

// ReadFunc reads one key inside a transaction.
type ReadFunc func(key string) (value string, ok bool, err error)

// TxnFunc sees the keys a transaction watches and returns the writes to
// commit. Returning no ops commits nothing.
type TxnFunc func(read ReadFunc) ([]Op, error)

// Transactor is implemented by stores that make read-then-write atomic for
// every writer of the keys, not only writers in this process. Reads inside
// the transaction refresh the TTL of every watched key that exists.
type Transactor interface {
	Transact(ctx context.Context, keys []string, fn TxnFunc) error
}

// ErrConflict means a transaction kept losing to concurrent writers.
var ErrConflict = errors.New("kvstore: transaction conflict")

// PrefixRemover is implemented by stores that can drop every key under a prefix.
type PrefixRemover interface {
	RemovePrefix(ctx context.Context, prefix string) error
}

type OpKind int

const (
	OpSet OpKind = iota
	OpRemove
)

type Op struct {
	Kind  OpKind
	Key   string
	Value string
}

func SetOp(key, value string) Op { return Op{Kind: OpSet, Key: key, Value: value} }

func RemoveOp(key string) Op { return Op{Kind: OpRemove, Key: key} }

// Apply writes ops as one unit. Stores implementing Batcher do it natively;
// for the rest the prior values are captured first and restored if any write fails.
func Apply(ctx context.Context, s Store, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	if b, ok := s.(Batcher); ok {
		return b.Apply(ctx, ops...)
	}

	type prior struct {
		key     string
		value   string
		present bool
	}
	priors := make([]prior, 0, len(ops))
	for _, op := range ops {
		v, ok, err := s.Get(ctx, op.Key)
		if err != nil {
			return fmt.Errorf("snapshot %q: %w", op.Key, err)
		}
		priors = append(priors, prior{key: op.Key, value: v, present: ok})
	}

	for i, op := range ops {
		if err := applyOne(ctx, s, op); err != nil {
			var rollbackErr error
			for j := i - 1; j >= 0; j-- {
				p := priors[j]
				var rerr error
				if p.present {
					rerr = s.Set(ctx, p.key, p.value)
				} else {
					rerr = s.Remove(ctx, p.key)
				}
				rollbackErr = errors.Join(rollbackErr, rerr)
			}
			if rollbackErr != nil {
				return fmt.Errorf("apply %q: %w (rollback: %v)", op.Key, err, rollbackErr)
			}
			return fmt.Errorf("apply %q: %w", op.Key, err)
		}
	}
	return nil
}

// Transact runs fn over keys and commits its ops. Stores implementing
// Transactor do it natively; for the rest the reads go through Get and the
// writes through Apply, which is only atomic against writers that share the
// caller's lock.
func Transact(ctx context.Context, s Store, keys []string, fn TxnFunc) error {
	if t, ok := s.(Transactor); ok {
		return t.Transact(ctx, keys, fn)
	}
	ops, err := fn(func(key string) (string, bool, error) { return s.Get(ctx, key) })
	if err != nil {
		return err
	}
	return Apply(ctx, s, ops...)
}

func applyOne(ctx context.Context, s Store, op Op) error {
	switch op.Kind {
	case OpSet:
		return s.Set(ctx, op.Key, op.Value)
	case OpRemove:
		return s.Remove(ctx, op.Key)
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}
