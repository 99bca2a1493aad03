package storefront

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/dbctx"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type ContactSubmissionRepo interface {
	Create(dbc dbctx.Context, row *types.ContactSubmission) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.ContactSubmission, error)
}

type contactSubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) ContactSubmissionRepo {
	return &contactSubmissionRepo{
		db:  db,
		log: baseLog.With("repo", "ContactSubmissionRepo"),
	}
}

func (r *contactSubmissionRepo) Create(dbc dbctx.Context, row *types.ContactSubmission) error {
	if row == nil {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = now
	}
	row.CreatedAt = now
	return dbc.DB(r.db).Create(row).Error
}

func (r *contactSubmissionRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.ContactSubmission, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []*types.ContactSubmission
	if err := dbc.DB(r.db).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
