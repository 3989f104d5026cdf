package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client. Timeouts are short because every
// caller (sessions, rate limiting) degrades gracefully when Redis is slow.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// SaveHash writes fields into the hash at key and resets its TTL.
func SaveHash(ctx context.Context, rdb *redis.Client, key string, fields map[string]any, ttl time.Duration) error {
	pipe := rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// UpdateHash merges fields into an existing hash without extending its lifetime.
// Missing keys are left alone so an expired session is not resurrected.
func UpdateHash(ctx context.Context, rdb *redis.Client, key string, fields map[string]any) error {
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	return rdb.HSet(ctx, key, fields).Err()
}

func RedisDel(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}
