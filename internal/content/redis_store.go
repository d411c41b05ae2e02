package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

// RedisStore keeps content packs in Redis under content:<kind>:<grade>:<level>, without expiry
type RedisStore struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisStore connects to Redis and pings it
func NewRedisStore(addr, password string, db int, log *logger.Logger) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisStoreFromClient(rdb, log), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(rdb *goredis.Client, log *logger.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: log.With("service", "RedisContentStore")}
}

func redisKey(kind models.ContentKind, grade, level int) string {
	return "content:" + cacheKey(kind, grade, level)
}

// Load returns the cached pack; ok is false on a miss
func (s *RedisStore) Load(ctx context.Context, kind models.ContentKind, grade, level int) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, redisKey(kind, grade, level)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Save stores a pack; a later write for the same key replaces it
func (s *RedisStore) Save(ctx context.Context, kind models.ContentKind, grade, level int, data []byte) error {
	if err := s.rdb.Set(ctx, redisKey(kind, grade, level), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.log.Debug("Cached content", "kind", kind, "grade", grade, "level", level, "bytes", len(data))
	return nil
}

// Close releases the client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
