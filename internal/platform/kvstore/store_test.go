package kvstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore/kvtest"
)

func TestApplyRestoresPriorValuesOnFailure(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore(0)
	_ = mem.Set(ctx, "cart", `[{"id":"b1"}]`)

	flaky := kvtest.NewFlaky(mem)
	flaky.FailRemovesOn("cart")

	err := kvstore.Apply(ctx, flaky, kvstore.SetOp("flag", "true"), kvstore.RemoveOp("cart"))
	if !errors.Is(err, kvstore.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if _, ok, _ := mem.Get(ctx, "flag"); ok {
		t.Fatalf("flag should have been rolled back")
	}
	if v, ok, _ := mem.Get(ctx, "cart"); !ok || v != `[{"id":"b1"}]` {
		t.Fatalf("cart should be untouched, got %q %v", v, ok)
	}
}

func TestApplySnapshotFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore(0)
	flaky := kvtest.NewFlaky(mem)
	flaky.FailGets(true)

	if err := kvstore.Apply(ctx, flaky, kvstore.SetOp("flag", "true")); err == nil {
		t.Fatalf("expected error")
	}
	if mem.Len() != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestScopedKeysAndClear(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore(0)
	a := kvstore.Scope(mem, kvstore.SessionNamespace("a"))
	b := kvstore.Scope(mem, kvstore.SessionNamespace("b"))

	_ = a.Set(ctx, "cart", "1")
	_ = b.Set(ctx, "cart", "2")

	if v, ok, _ := mem.Get(ctx, "session:a:cart"); !ok || v != "1" {
		t.Fatalf("unexpected raw key: %q %v", v, ok)
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := a.Get(ctx, "cart"); ok {
		t.Fatalf("session a should be empty")
	}
	if v, _, _ := b.Get(ctx, "cart"); v != "2" {
		t.Fatalf("session b should be untouched")
	}
}

func TestScopedClearWithoutPrefixSupportUsesKnownKeys(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore(0)
	scoped := kvstore.Scope(kvtest.NewFlaky(mem), "s")
	_ = scoped.Set(ctx, "cart", "1")
	_ = scoped.Set(ctx, "flag", "true")

	if err := scoped.Clear(ctx, "cart", "flag"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", mem.Len())
	}
}
