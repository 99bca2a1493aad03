package storefront

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/bookhaven-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/dbctx"
)

func TestSubscriberRepoIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSubscriberRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	first, created, err := repo.Subscribe(dbc, "  Reader@Example.com ")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !created || first.Email != "reader@example.com" {
		t.Fatalf("first subscribe: created=%v email=%q", created, first.Email)
	}

	second, created, err := repo.Subscribe(dbc, "reader@example.com")
	if err != nil {
		t.Fatalf("Subscribe again: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate to report created=false")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing row back")
	}

	n, err := repo.Count(dbc)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
}

func TestContactSubmissionRepoCreateAndList(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewContactSubmissionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	row := &types.ContactSubmission{
		Name:     "Ada",
		Email:    "ada@example.com",
		Subject:  "order",
		Message:  "Where is my book?",
		Metadata: datatypes.JSON([]byte(`{"request_id":"r1"}`)),
	}
	if err := repo.Create(dbc, row); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if row.SubmittedAt.IsZero() {
		t.Fatalf("expected SubmittedAt to be stamped")
	}

	got, err := repo.ListRecent(dbc, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 1 || got[0].Subject != "order" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestIsUniqueViolationRecognisesSQLiteText(t *testing.T) {
	if !isUniqueViolation(errString("UNIQUE constraint failed: subscriber.email")) {
		t.Fatalf("expected sqlite unique error to match")
	}
	if isUniqueViolation(errString("disk I/O error")) {
		t.Fatalf("unexpected match")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
