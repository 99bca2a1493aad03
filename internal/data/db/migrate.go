package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&storefront.ContactSubmission{},
		&storefront.Subscriber{},
	)
}
