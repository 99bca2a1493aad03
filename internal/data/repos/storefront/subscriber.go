package storefront

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/dbctx"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type SubscriberRepo interface {
	// Subscribe stores email once. created is false when it was already there.
	Subscribe(dbc dbctx.Context, email string) (row *types.Subscriber, created bool, err error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Subscriber, error)
	Count(dbc dbctx.Context) (int64, error)
}

type subscriberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) SubscriberRepo {
	return &subscriberRepo{
		db:  db,
		log: baseLog.With("repo", "SubscriberRepo"),
	}
}

func (r *subscriberRepo) Subscribe(dbc dbctx.Context, email string) (*types.Subscriber, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := r.GetByEmail(dbc, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	row := &types.Subscriber{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent signup for the same address.
			r.log.Debug("subscriber already present", "error", err)
			return &types.Subscriber{Email: email}, false, nil
		}
		return nil, false, err
	}
	return row, true, nil
}

func (r *subscriberRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var row types.Subscriber
	if err := dbc.DB(r.db).
		Where("email = ?", email).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *subscriberRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Subscriber{}).Count(&n).Error
	return n, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
