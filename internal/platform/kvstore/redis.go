package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient dials and pings; a failed ping closes the client.
func NewRedisClient(log *logger.Logger, cfg RedisConfig) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if log != nil {
		log.Info("redis connected", "addr", addr, "db", cfg.DB)
	}
	return rdb, nil
}

// RedisStore maps each key to a Redis string. Reads and writes refresh the
// key's TTL, which is how a session "ends" after inactivity.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		v   string
		err error
	)
	if s.ttl > 0 {
		v, err = s.rdb.GetEx(ctx, key, s.ttl).Result()
	} else {
		v, err = s.rdb.Get(ctx, key).Result()
	}
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Apply runs the ops inside MULTI/EXEC.
func (s *RedisStore) Apply(ctx context.Context, ops ...Op) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, op := range ops {
			switch op.Kind {
			case OpSet:
				pipe.Set(ctx, op.Key, op.Value, s.ttl)
			case OpRemove:
				pipe.Del(ctx, op.Key)
			default:
				return fmt.Errorf("unknown op kind %d", op.Kind)
			}
		}
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// maxTxnAttempts bounds optimistic retries when another writer touches a
// watched key between the reads and EXEC.
const maxTxnAttempts = 8

// Transact WATCHes keys, reads them with plain GETs, and commits fn's ops plus
// a TTL refresh of every untouched watched key in one MULTI/EXEC. A
// concurrent write to any watched key aborts EXEC and the whole read-decide-
// write cycle runs again.
func (s *RedisStore) Transact(ctx context.Context, keys []string, fn TxnFunc) error {
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		var fnErr error
		err := s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
			present := make(map[string]bool, len(keys))
			read := func(key string) (string, bool, error) {
				v, err := tx.Get(ctx, key).Result()
				if errors.Is(err, goredis.Nil) {
					return "", false, nil
				}
				if err != nil {
					return "", false, unavailable(err)
				}
				present[key] = true
				return v, true, nil
			}
			for _, k := range keys {
				if _, _, err := read(k); err != nil {
					return err
				}
			}

			ops, err := fn(read)
			if err != nil {
				fnErr = err
				return err
			}
			written := make(map[string]bool, len(ops))
			for _, op := range ops {
				written[op.Key] = true
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				for _, op := range ops {
					switch op.Kind {
					case OpSet:
						pipe.Set(ctx, op.Key, op.Value, s.ttl)
					case OpRemove:
						pipe.Del(ctx, op.Key)
					default:
						return fmt.Errorf("unknown op kind %d", op.Kind)
					}
				}
				if s.ttl > 0 {
					for _, k := range keys {
						if present[k] && !written[k] {
							pipe.Expire(ctx, k, s.ttl)
						}
					}
				}
				return nil
			})
			return err
		}, keys...)

		switch {
		case err == nil:
			return nil
		case fnErr != nil:
			return fnErr
		case errors.Is(err, goredis.TxFailedErr):
			continue
		case errors.Is(err, ErrUnavailable):
			return err
		default:
			return unavailable(err)
		}
	}
	return fmt.Errorf("%w: %w after %d attempts", ErrUnavailable, ErrConflict, maxTxnAttempts)
}

func (s *RedisStore) RemovePrefix(ctx context.Context, prefix string) error {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return unavailable(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
