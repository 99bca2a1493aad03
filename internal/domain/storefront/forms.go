package storefront

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContactSubmission is a validated contact-form message.
type ContactSubmission struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"column:name;not null" json:"name"`
	Email   string    `gorm:"column:email;not null;index" json:"email"`
	Subject string    `gorm:"column:subject;not null" json:"subject"`
	Message string    `gorm:"column:message;type:text;not null" json:"message"`

	// Request context (user agent, request id) kept for follow-up.
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null;index" json:"timestamp"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (ContactSubmission) TableName() string { return "contact_submission" }

// Subscriber is a newsletter signup. Email is stored lower-cased and unique.
type Subscriber struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Subscriber) TableName() string { return "subscriber" }
