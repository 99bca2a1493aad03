package app

import (
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/platform/sendgrid"
)

type Clients struct {
	Redis *goredis.Client
	// Mail is nil unless SENDGRID_API_KEY is set.
	Mail sendgrid.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		c, err := kvstore.NewRedisClient(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		rdb = c
	}

	// SendGrid
	mail, err := sendgrid.NewFromEnv(log)
	switch {
	case errors.Is(err, sendgrid.ErrNotConfigured):
		mail = nil
	case err != nil:
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init sendgrid: %w", err)
	}

	return Clients{Redis: rdb, Mail: mail}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
