package kvstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStore keeps values in process. A positive ttl expires keys that are
// neither read nor written for that long.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	data   map[string]memoryEntry
	closed bool
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(ttl, time.Now)
}

// NewMemoryStoreWithClock is NewMemoryStore reading time from now.
func NewMemoryStoreWithClock(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  now,
		data: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrUnavailable
	}
	e, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	now := m.now()
	if m.expired(e, now) {
		delete(m.data, key)
		return "", false, nil
	}
	e.expires = m.deadline(now)
	m.data[key] = e
	return e.value, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	m.data[key] = memoryEntry{value: value, expires: m.deadline(m.now())}
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

// Apply holds the lock across all ops, so readers never see a partial batch.
func (m *MemoryStore) Apply(ctx context.Context, ops ...Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	return m.applyLocked(ops, m.deadline(m.now()))
}

// Transact holds the lock across the reads and the commit. Every watched key
// that exists slides to the same new deadline, read or not.
func (m *MemoryStore) Transact(ctx context.Context, keys []string, fn TxnFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	now := m.now()
	deadline := m.deadline(now)
	for _, k := range keys {
		e, ok := m.data[k]
		if !ok {
			continue
		}
		if m.expired(e, now) {
			delete(m.data, k)
			continue
		}
		e.expires = deadline
		m.data[k] = e
	}

	ops, err := fn(func(key string) (string, bool, error) {
		e, ok := m.data[key]
		if !ok || m.expired(e, now) {
			return "", false, nil
		}
		return e.value, true, nil
	})
	if err != nil {
		return err
	}
	return m.applyLocked(ops, deadline)
}

func (m *MemoryStore) applyLocked(ops []Op, deadline time.Time) error {
	for _, op := range ops {
		if op.Kind != OpSet && op.Kind != OpRemove {
			return fmt.Errorf("unknown op kind %d", op.Kind)
		}
	}
	for _, op := range ops {
		if op.Kind == OpSet {
			m.data[op.Key] = memoryEntry{value: op.Value, expires: deadline}
		} else {
			delete(m.data, op.Key)
		}
	}
	return nil
}

func (m *MemoryStore) RemovePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Len counts live keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for _, e := range m.data {
		if !m.expired(e, now) {
			n++
		}
	}
	return n
}

// StartJanitor sweeps expired keys every interval until ctx is done.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.data {
		if m.expired(e, now) {
			delete(m.data, k)
		}
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) deadline(now time.Time) time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(m.ttl)
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
