// Package redis builds the optional go-redis client userstats.Index uses
// as its second cache tier when REDIS_ADDR is configured. Trimmed from the
// teacher's cluster/sentinel-aware internal/redis client down to the single
// piece this service needs: one pooled connection, verified reachable at
// startup, since DLOB never needs Redis Cluster or Sentinel failover for a
// read-mostly lazy cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the handful of pool/timeout knobs worth tuning for a
// lazy-loaded, low-volume cache — not a general-purpose Redis client.
type Config struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sane defaults for everything but Addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:         addr,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
}

// NewClient connects a single-instance go-redis client and verifies it
// with a Ping before returning, so a misconfigured REDIS_ADDR fails at
// startup rather than on the first cache miss.
func NewClient(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
