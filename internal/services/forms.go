package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/yungbote/bookhaven-backend/internal/data/repos"
	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/dbctx"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

const (
	MsgSubscribeEmpty   = "Please enter your email address."
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgSubscribeSuccess = "Thank you for subscribing! Check your inbox for updates."

	MsgContactName    = "Please enter your name (at least 2 characters)."
	MsgContactSubject = "Please select a subject."
	MsgContactMessage = "Please enter a message (at least 10 characters)."
	MsgContactSuccess = "Thank you for your message! We'll get back to you soon."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidationError carries the user-facing message and the offending fields.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type FormsService interface {
	Subscribe(ctx context.Context, email string) (string, error)
	SubmitContact(ctx context.Context, in ContactInput, meta map[string]string) (*types.ContactSubmission, string, error)
}

type formsService struct {
	log         *logger.Logger
	subscribers repos.SubscriberRepo
	contacts    repos.ContactSubmissionRepo
	notifier    ContactNotifier
	metrics     *observability.Metrics
}

// NewFormsService wires the form handlers; notifier may be nil.
func NewFormsService(log *logger.Logger, subscribers repos.SubscriberRepo, contacts repos.ContactSubmissionRepo, notifier ContactNotifier, metrics *observability.Metrics) FormsService {
	return &formsService{
		log:         log.With("service", "FormsService"),
		subscribers: subscribers,
		contacts:    contacts,
		notifier:    notifier,
		metrics:     metrics,
	}
}

func (s *formsService) Subscribe(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		s.metrics.IncForm("subscribe", "invalid")
		return "", &ValidationError{Message: MsgSubscribeEmpty, Fields: []string{"email"}}
	}
	if !ValidEmail(email) {
		s.metrics.IncForm("subscribe", "invalid")
		return "", &ValidationError{Message: MsgInvalidEmail, Fields: []string{"email"}}
	}

	_, created, err := s.subscribers.Subscribe(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		s.metrics.IncForm("subscribe", "error")
		return "", fmt.Errorf("store subscriber: %w", err)
	}
	s.metrics.IncForm("subscribe", "ok")
	s.log.Info("newsletter signup", "email", email, "created", created)
	return MsgSubscribeSuccess, nil
}

func (s *formsService) SubmitContact(ctx context.Context, in ContactInput, meta map[string]string) (*types.ContactSubmission, string, error) {
	in = ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if verr := validateContact(in); verr != nil {
		s.metrics.IncForm("contact", "invalid")
		return nil, "", verr
	}

	row := &types.ContactSubmission{
		Name:        in.Name,
		Email:       in.Email,
		Subject:     in.Subject,
		Message:     in.Message,
		SubmittedAt: time.Now().UTC(),
	}
	if len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			row.Metadata = datatypes.JSON(raw)
		}
	}
	if err := s.contacts.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		s.metrics.IncForm("contact", "error")
		return nil, "", fmt.Errorf("store contact submission: %w", err)
	}
	s.metrics.IncForm("contact", "ok")
	s.log.Info("contact submission stored", "submission_id", row.ID.String(), "subject", row.Subject)
	if s.notifier != nil {
		s.notifier.ContactReceived(ctx, row)
	}
	return row, MsgContactSuccess, nil
}

// validateContact collects every failing rule, in form order.
func validateContact(in ContactInput) *ValidationError {
	var msgs, fields []string
	if utf8.RuneCountInString(in.Name) < 2 {
		msgs = append(msgs, MsgContactName)
		fields = append(fields, "name")
	}
	if !ValidEmail(in.Email) {
		msgs = append(msgs, MsgInvalidEmail)
		fields = append(fields, "email")
	}
	if in.Subject == "" {
		msgs = append(msgs, MsgContactSubject)
		fields = append(fields, "subject")
	}
	if utf8.RuneCountInString(in.Message) < 10 {
		msgs = append(msgs, MsgContactMessage)
		fields = append(fields, "message")
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Message: strings.Join(msgs, " "), Fields: fields}
}
