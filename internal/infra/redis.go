package infra

import (
	"context"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewLocker returns a distributed lock client on top of rdb, or nil when
// Redis is not configured.
func NewLocker(rdb *redis.Client) *redislock.Client {
	if rdb == nil {
		return nil
	}
	return redislock.New(rdb)
}
