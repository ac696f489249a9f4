package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Locker serializes writers per resource. *lock.KeyedLock implements it.
type Locker interface {
	Acquire(ctx context.Context, resource string) (string, error)
	Release(ctx context.Context, resource, token string) error
}

var fileLock Locker

// InitFileLock sets the per-file write lock. Passing nil disables locking.
func InitFileLock(l Locker) {
	fileLock = l
}

// FileWriteLockMw returns a middleware slice that holds the lock for the
// file named by the :id route parameter while the handler runs. If no lock
// is configured it returns nil so requests pass through untouched.
func FileWriteLockMw() []app.HandlerFunc {
	if fileLock == nil {
		return nil
	}
	return []app.HandlerFunc{fileWriteLockHandler(fileLock)}
}

func fileWriteLockHandler(l Locker) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		fileID := c.Param("id")
		if fileID == "" {
			c.Next(ctx)
			return
		}
		token, err := l.Acquire(ctx, fileID)
		if err != nil {
			hlog.CtxWarnf(ctx, "[FileLock] failed to acquire lock for %s: %v", fileID, err)
			c.JSON(consts.StatusServiceUnavailable, map[string]any{
				"code":  consts.StatusServiceUnavailable,
				"error": "STORAGE_ERROR",
				"msg":   "file is busy, please retry later",
			})
			c.Abort()
			return
		}
		defer func() {
			if releaseErr := l.Release(ctx, fileID, token); releaseErr != nil {
				hlog.CtxWarnf(ctx, "[FileLock] failed to release lock for %s: %v", fileID, releaseErr)
			}
		}()
		c.Next(ctx)
	}
}
