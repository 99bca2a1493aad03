package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/platform/sendgrid"
)

// ContactNotifier hears about every stored contact submission. Delivery is
// best effort and never fails the submission.
type ContactNotifier interface {
	ContactReceived(ctx context.Context, sub *types.ContactSubmission)
}

type contactMailer struct {
	log       *logger.Logger
	client    sendgrid.Client
	to        []sendgrid.EmailAddress
	storeName string
	timeout   time.Duration
}

// NewContactMailer emails staff a copy of each contact message with
// Reply-To set to the customer.
func NewContactMailer(log *logger.Logger, client sendgrid.Client, to []string, storeName string) ContactNotifier {
	addrs := make([]sendgrid.EmailAddress, 0, len(to))
	for _, e := range to {
		if e = strings.TrimSpace(e); e != "" {
			addrs = append(addrs, sendgrid.EmailAddress{Email: e})
		}
	}
	return &contactMailer{
		log:       log.With("service", "ContactMailer"),
		client:    client,
		to:        addrs,
		storeName: storeName,
		timeout:   30 * time.Second,
	}
}

func (m *contactMailer) ContactReceived(ctx context.Context, sub *types.ContactSubmission) {
	if m.client == nil || len(m.to) == 0 || sub == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		_ = m.send(ctx, sub)
	}()
}

func (m *contactMailer) send(ctx context.Context, sub *types.ContactSubmission) error {
	res, err := m.client.Send(ctx, contactEmail(m.storeName, m.to, sub))
	if err != nil {
		m.log.Warn("contact notification failed", "submission_id", sub.ID.String(), "error", err)
		return err
	}
	m.log.Info("contact notification sent", "submission_id", sub.ID.String(), "message_id", res.MessageID)
	return nil
}

func contactEmail(storeName string, to []sendgrid.EmailAddress, sub *types.ContactSubmission) sendgrid.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", sub.Name, sub.Email)
	fmt.Fprintf(&b, "Subject: %s\n", sub.Subject)
	fmt.Fprintf(&b, "Received: %s\n\n", sub.SubmittedAt.UTC().Format(time.RFC3339))
	b.WriteString(sub.Message)
	b.WriteString("\n")

	return sendgrid.Email{
		To:         to,
		ReplyTo:    &sendgrid.EmailAddress{Email: sub.Email, Name: sub.Name},
		Subject:    fmt.Sprintf("[%s] Contact: %s", storeName, sub.Subject),
		Text:       b.String(),
		Categories: []string{"contact-form"},
	}
}
