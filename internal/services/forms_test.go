package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bookhaven-backend/internal/data/repos"
	"github.com/yungbote/bookhaven-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/dbctx"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

func newTestForms(t *testing.T) (FormsService, repos.SubscriberRepo, repos.ContactSubmissionRepo) {
	t.Helper()
	db := testutil.DB(t)
	subs := repos.NewSubscriberRepo(db, logger.Nop())
	contacts := repos.NewContactSubmissionRepo(db, logger.Nop())
	return NewFormsService(logger.Nop(), subs, contacts, nil, nil), subs, contacts
}

func TestSubscribeValidation(t *testing.T) {
	svc, _, _ := newTestForms(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "   ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgSubscribeEmpty, verr.Message)

	_, err = svc.Subscribe(ctx, "reader@nowhere")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgInvalidEmail, verr.Message)
	assert.Equal(t, []string{"email"}, verr.Fields)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	svc, subs, _ := newTestForms(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		msg, err := svc.Subscribe(ctx, " reader@example.com ")
		require.NoError(t, err)
		assert.Equal(t, MsgSubscribeSuccess, msg)
	}
	n, err := subs.Count(dbctx.Context{Ctx: ctx})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubmitContactCollectsAllErrorsInOrder(t *testing.T) {
	svc, _, _ := newTestForms(t)
	_, _, err := svc.SubmitContact(context.Background(), ContactInput{Name: "A", Email: "bad", Message: "short"}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"name", "email", "subject", "message"}, verr.Fields)
	assert.Equal(t, strings.Join([]string{MsgContactName, MsgInvalidEmail, MsgContactSubject, MsgContactMessage}, " "), verr.Message)
}

func TestSubmitContactPersists(t *testing.T) {
	svc, _, contacts := newTestForms(t)
	ctx := context.Background()

	row, msg, err := svc.SubmitContact(ctx, ContactInput{
		Name:    "  Ada ",
		Email:   "ada@example.com",
		Subject: "orders",
		Message: "Where is my parcel, please?",
	}, map[string]string{"request_id": "r-1"})
	require.NoError(t, err)
	assert.Equal(t, MsgContactSuccess, msg)
	assert.Equal(t, "Ada", row.Name)
	assert.False(t, row.SubmittedAt.IsZero())

	rows, err := contacts.ListRecent(dbctx.Context{Ctx: ctx}, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"request_id":"r-1"}`, string(rows[0].Metadata))
}

type recordingContactNotifier struct {
	got []*types.ContactSubmission
}

func (r *recordingContactNotifier) ContactReceived(ctx context.Context, sub *types.ContactSubmission) {
	r.got = append(r.got, sub)
}

func TestSubmitContactNotifiesOnlyStoredSubmissions(t *testing.T) {
	db := testutil.DB(t)
	rec := &recordingContactNotifier{}
	svc := NewFormsService(logger.Nop(), repos.NewSubscriberRepo(db, logger.Nop()), repos.NewContactSubmissionRepo(db, logger.Nop()), rec, nil)
	ctx := context.Background()

	_, _, err := svc.SubmitContact(ctx, ContactInput{Name: "A"}, nil)
	require.Error(t, err)
	assert.Empty(t, rec.got)

	row, _, err := svc.SubmitContact(ctx, ContactInput{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "general",
		Message: "Loved the reading nook!",
	}, nil)
	require.NoError(t, err)
	require.Len(t, rec.got, 1)
	assert.Equal(t, row.ID, rec.got[0].ID)
}
