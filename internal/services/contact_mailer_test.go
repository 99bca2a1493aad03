package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/platform/sendgrid"
)

type fakeMail struct {
	sent []sendgrid.Email
	err  error
}

func (f *fakeMail) Send(ctx context.Context, msg sendgrid.Email) (*sendgrid.SendResult, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return nil, f.err
	}
	return &sendgrid.SendResult{StatusCode: 202, MessageID: "m1"}, nil
}

func testSubmission() *types.ContactSubmission {
	return &types.ContactSubmission{
		ID:          uuid.New(),
		Name:        "Ada",
		Email:       "ada@example.com",
		Subject:     "orders",
		Message:     "Where is my parcel?",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestContactMailerBuildsStaffEmail(t *testing.T) {
	mail := &fakeMail{}
	m := NewContactMailer(logger.Nop(), mail, []string{" staff@example.com ", ""}, "Book Haven").(*contactMailer)

	require.NoError(t, m.send(context.Background(), testSubmission()))
	require.Len(t, mail.sent, 1)

	msg := mail.sent[0]
	assert.Equal(t, "[Book Haven] Contact: orders", msg.Subject)
	assert.Equal(t, []sendgrid.EmailAddress{{Email: "staff@example.com"}}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo.Email)
	assert.True(t, strings.Contains(msg.Text, "Where is my parcel?"))
	assert.True(t, strings.Contains(msg.Text, "2026-03-01T12:00:00Z"))
}

func TestContactMailerReportsSendFailure(t *testing.T) {
	mail := &fakeMail{err: errors.New("down")}
	m := NewContactMailer(logger.Nop(), mail, []string{"staff@example.com"}, "Book Haven").(*contactMailer)
	assert.Error(t, m.send(context.Background(), testSubmission()))
}

func TestContactMailerWithoutRecipientsIsSilent(t *testing.T) {
	mail := &fakeMail{}
	m := NewContactMailer(logger.Nop(), mail, nil, "Book Haven")
	m.ContactReceived(context.Background(), testSubmission())
	assert.Empty(t, mail.sent)
}
