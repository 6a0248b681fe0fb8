// Package redis backs the login attempt limiter with a shared Redis server.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	opTimeout   = time.Second
)

// Config holds the connection settings for the limiter's server.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds the startup ping. Zero means dialTimeout.
	Timeout time.Duration
}

// Connect opens a client and pings it once. The caller owns the client and
// must Close it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	wait := cfg.Timeout
	if wait <= 0 {
		wait = dialTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
