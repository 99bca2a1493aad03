package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/bookhaven-backend/internal/data/repos/storefront"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type ContactSubmissionRepo = storefront.ContactSubmissionRepo
type SubscriberRepo = storefront.SubscriberRepo

func NewContactSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) ContactSubmissionRepo {
	return storefront.NewContactSubmissionRepo(db, baseLog)
}

func NewSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) SubscriberRepo {
	return storefront.NewSubscriberRepo(db, baseLog)
}
