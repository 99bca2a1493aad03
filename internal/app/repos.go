package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/bookhaven-backend/internal/data/repos"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type Repos struct {
	ContactSubmission repos.ContactSubmissionRepo
	Subscriber        repos.SubscriberRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ContactSubmission: repos.NewContactSubmissionRepo(db, log),
		Subscriber:        repos.NewSubscriberRepo(db, log),
	}
}
