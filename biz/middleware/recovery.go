package middleware

import (
	"context"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Recovery returns a middleware that recovers from panics and logs the error.
// Panic details stay in the log; clients only see a generic message.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				hlog.CtxErrorf(ctx, "panic recovered on %s %s: %v\n%s",
					c.Request.Method(), c.Request.URI().Path(), err, string(stack))

				c.JSON(consts.StatusInternalServerError, map[string]any{
					"code":  consts.StatusInternalServerError,
					"error": "INTERNAL_ERROR",
					"msg":   "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}
