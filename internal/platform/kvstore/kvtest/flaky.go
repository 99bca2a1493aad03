// Package kvtest provides Store doubles for exercising storage failure paths.
package kvtest

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
)

// Flaky wraps a Store and fails selected calls with kvstore.ErrUnavailable.
// It deliberately does not implement kvstore.Batcher, so batches against it
// go through the compensating path.
type Flaky struct {
	Inner kvstore.Store

	mu        sync.Mutex
	failGets  bool
	failSets  map[string]bool
	failRems  map[string]bool
	setCalls  int
	failAfter int
}

func NewFlaky(inner kvstore.Store) *Flaky {
	return &Flaky{Inner: inner, failSets: map[string]bool{}, failRems: map[string]bool{}, failAfter: -1}
}

// FailGets makes every Get fail.
func (f *Flaky) FailGets(on bool) {
	f.mu.Lock()
	f.failGets = on
	f.mu.Unlock()
}

// FailSetsOn makes Set fail for keys ending in suffix.
func (f *Flaky) FailSetsOn(suffix string) {
	f.mu.Lock()
	f.failSets[suffix] = true
	f.mu.Unlock()
}

// FailRemovesOn makes Remove fail for keys ending in suffix.
func (f *Flaky) FailRemovesOn(suffix string) {
	f.mu.Lock()
	f.failRems[suffix] = true
	f.mu.Unlock()
}

// FailSetsAfter lets n more Set calls succeed, then fails the rest.
func (f *Flaky) FailSetsAfter(n int) {
	f.mu.Lock()
	f.setCalls = 0
	f.failAfter = n
	f.mu.Unlock()
}

// Heal clears all failure switches.
func (f *Flaky) Heal() {
	f.mu.Lock()
	f.failGets = false
	f.failSets = map[string]bool{}
	f.failRems = map[string]bool{}
	f.failAfter = -1
	f.mu.Unlock()
}

func (f *Flaky) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGets
	f.mu.Unlock()
	if fail {
		return "", false, kvstore.ErrUnavailable
	}
	return f.Inner.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := matches(f.failSets, key)
	if f.failAfter >= 0 {
		if f.setCalls >= f.failAfter {
			fail = true
		}
		f.setCalls++
	}
	f.mu.Unlock()
	if fail {
		return kvstore.ErrUnavailable
	}
	return f.Inner.Set(ctx, key, value)
}

func (f *Flaky) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := matches(f.failRems, key)
	f.mu.Unlock()
	if fail {
		return kvstore.ErrUnavailable
	}
	return f.Inner.Remove(ctx, key)
}

func matches(set map[string]bool, key string) bool {
	for suffix := range set {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
