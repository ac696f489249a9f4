package redis

import (
	"testing"
	"time"

	"github.com/munify/doc_vault/pkg/config"
)

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Enabled: false, Address: "localhost:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client when redis is disabled")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	// Port 1 is reserved; the ping must fail and the client must be closed.
	client, err := NewClient(config.RedisConfig{Enabled: true, Address: "127.0.0.1:1", DialTimeout: 500 * time.Millisecond})
	if err == nil {
		t.Fatal("expected ping error for unreachable redis")
	}
	if client != nil {
		t.Fatal("expected nil client on ping failure")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := options(config.RedisConfig{
		Address:      "redis:6380",
		Password:     "secret",
		DB:           2,
		PoolSize:     25,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: 1500 * time.Millisecond,
	})
	if opts.Addr != "redis:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("unexpected connection options %+v", opts)
	}
	if opts.PoolSize != 25 {
		t.Fatalf("expected pool size 25, got %d", opts.PoolSize)
	}
	if opts.DialTimeout != 2*time.Second || opts.ReadTimeout != time.Second || opts.WriteTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeouts dial=%v read=%v write=%v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}

	opts = options(config.RedisConfig{})
	if opts.Addr != "localhost:6379" {
		t.Fatalf("expected default address, got %s", opts.Addr)
	}
	if opts.PoolSize != 0 || opts.DialTimeout != 0 {
		t.Fatalf("zero config should leave go-redis defaults, got pool=%d dial=%v", opts.PoolSize, opts.DialTimeout)
	}
}
