package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/munify/doc_vault/pkg/metrics"
)

// Logging returns a middleware that logs each request and records its metrics.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		latency := time.Since(start)
		method := string(c.Request.Method())
		path := string(c.Request.URI().Path())
		statusCode := c.Response.StatusCode()

		// Route patterns keep label cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(method, route, statusCode, latency)

		hlog.CtxInfof(ctx, "[%s] %s %s %d %v user=%s",
			c.ClientIP(),
			method,
			path,
			statusCode,
			latency,
			string(c.GetHeader(HeaderUserID)),
		)
	}
}
