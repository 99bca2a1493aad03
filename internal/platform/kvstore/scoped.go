package kvstore

import (
	"context"
	"fmt"
)

// Scoped confines a Store to keys under one namespace, e.g. a session.
type Scoped struct {
	inner  Store
	prefix string
}

// Scope returns a view of s whose keys live under "<namespace>:".
func Scope(s Store, namespace string) *Scoped {
	return &Scoped{inner: s, prefix: namespace + ":"}
}

// SessionNamespace is the namespace all keys of one browser session share.
func SessionNamespace(sessionID string) string {
	return "session:" + sessionID
}

func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// Apply prefixes every op and defers to the package-level Apply on the inner
// store, keeping its batching (or compensation) semantics.
func (s *Scoped) Apply(ctx context.Context, ops ...Op) error {
	prefixed := make([]Op, len(ops))
	for i, op := range ops {
		op.Key = s.prefix + op.Key
		prefixed[i] = op
	}
	return Apply(ctx, s.inner, prefixed...)
}

// Transact prefixes the watched keys, the reads and the ops, then defers to
// the package-level Transact on the inner store.
func (s *Scoped) Transact(ctx context.Context, keys []string, fn TxnFunc) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	return Transact(ctx, s.inner, prefixed, func(read ReadFunc) ([]Op, error) {
		ops, err := fn(func(key string) (string, bool, error) { return read(s.prefix + key) })
		if err != nil {
			return nil, err
		}
		for i := range ops {
			ops[i].Key = s.prefix + ops[i].Key
		}
		return ops, nil
	})
}

// Clear drops every key in the namespace.
func (s *Scoped) Clear(ctx context.Context, knownKeys ...string) error {
	if pr, ok := s.inner.(PrefixRemover); ok {
		return pr.RemovePrefix(ctx, s.prefix)
	}
	ops := make([]Op, 0, len(knownKeys))
	for _, k := range knownKeys {
		ops = append(ops, RemoveOp(k))
	}
	if err := s.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("clear %s: %w", s.prefix, err)
	}
	return nil
}
