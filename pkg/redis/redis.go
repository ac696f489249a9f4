package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/munify/doc_vault/pkg/config"
	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

// NewClient connects to the Redis used for per-file write locks and checks
// it with a ping bounded by the dial timeout. Returns nil, nil if Redis is
// not enabled.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts := options(cfg)
	client := redis.NewClient(opts)

	pingTimeout := opts.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return client, nil
}

// options maps config onto go-redis options. Zero values keep the go-redis
// defaults.
func options(cfg config.RedisConfig) *redis.Options {
	addr := cfg.Address
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts
}
