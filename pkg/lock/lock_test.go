package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the handful of commands the lock issues.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	keys map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]string{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

// EvalSha runs the compare-and-delete release script.
func (f *fakeRedis) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[keys[0]] == args[0].(string) {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestKeyedLockIsPerResource(t *testing.T) {
	client := newFakeRedis()
	l := New(client, "test:", time.Minute, 120*time.Millisecond)
	ctx := context.Background()

	tokenA, err := l.Acquire(ctx, "file-a")
	if err != nil {
		t.Fatalf("acquire file-a: %v", err)
	}
	if _, err := l.Acquire(ctx, "file-b"); err != nil {
		t.Fatalf("acquire file-b should not wait on file-a: %v", err)
	}

	if _, err := l.Acquire(ctx, "file-a"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	if err := l.Release(ctx, "file-a", "someone-else"); err != nil {
		t.Fatalf("release with foreign token: %v", err)
	}
	if _, ok := client.keys["test:file-a"]; !ok {
		t.Fatal("foreign token must not release the lock")
	}

	if err := l.Release(ctx, "file-a", tokenA); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Acquire(ctx, "file-a"); err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	client := newFakeRedis()
	l := New(client, "test:", time.Minute, time.Minute)
	if _, err := l.Acquire(context.Background(), "file-a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, "file-a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}
