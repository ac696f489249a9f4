package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/munify/doc_vault/pkg/common"
)

const (
	HeaderUserID         = "X-User-Id"
	HeaderOrganizationID = "X-Organization-Id"
)

// Auth returns a middleware that extracts caller identity from request headers
// set by the upstream gateway and adds it to the context. It does NOT enforce
// authentication.
func Auth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if userID := strings.TrimSpace(string(c.GetHeader(HeaderUserID))); userID != "" {
			ctx = common.ContextWithUserID(ctx, userID)
		}
		if orgID := strings.TrimSpace(string(c.GetHeader(HeaderOrganizationID))); orgID != "" {
			ctx = common.ContextWithOrganizationID(ctx, orgID)
		}
		c.Next(ctx)
	}
}

// RequireAuth rejects requests without an X-User-Id header with 401.
func RequireAuth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		userID := strings.TrimSpace(string(c.GetHeader(HeaderUserID)))
		if userID == "" {
			c.JSON(consts.StatusUnauthorized, map[string]any{
				"code":  consts.StatusUnauthorized,
				"error": "UNAUTHORIZED",
				"msg":   "missing X-User-Id header",
			})
			c.Abort()
			return
		}
		ctx = common.ContextWithUserID(ctx, userID)
		c.Next(ctx)
	}
}
