package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timeout acquiring lock")

// KeyedLock hands out exclusive Redis locks per resource name, so writers of
// different files never wait on each other.
type KeyedLock struct {
	client         redis.Cmdable
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

// New creates a KeyedLock.
//   - prefix: namespace prepended to every resource (e.g. "doc_vault:file_lock:")
//   - ttl: how long a lock is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire a lock
func New(client redis.Cmdable, prefix string, ttl, acquireTimeout time.Duration) *KeyedLock {
	return &KeyedLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire blocks with exponential backoff until the lock for resource is
// obtained or the timeout elapses. The returned token is needed for Release.
func (l *KeyedLock) Acquire(ctx context.Context, resource string) (string, error) {
	token := uuid.New().String()
	key := l.prefix + resource
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return token, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w %s after %s", ErrLockTimeout, resource, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release frees the lock for resource if it is still owned by token.
func (l *KeyedLock) Release(ctx context.Context, resource, token string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.prefix + resource}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
