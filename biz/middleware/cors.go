package middleware

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/munify/doc_vault/pkg/config"
)

// CORS answers preflight requests and lets browsers read the download
// headers (file name and checksum) listed in ExposeHeaders.
func CORS(cfg *config.CORSConfig) app.HandlerFunc {
	allowOrigin := "*"
	allowMethods := "GET,POST,PATCH,DELETE,OPTIONS"
	allowHeaders := "Content-Type," + HeaderUserID + "," + HeaderOrganizationID
	exposeHeaders := config.DefaultExposeHeaders
	allowCredentials := "false"
	maxAge := ""

	if cfg != nil {
		if cfg.AllowOrigin != "" {
			allowOrigin = cfg.AllowOrigin
		}
		if cfg.AllowMethods != "" {
			allowMethods = cfg.AllowMethods
		}
		if cfg.AllowHeaders != "" {
			allowHeaders = cfg.AllowHeaders
		}
		if cfg.ExposeHeaders != "" {
			exposeHeaders = cfg.ExposeHeaders
		}
		if cfg.AllowCredentials {
			allowCredentials = "true"
		}
		if cfg.MaxAge > 0 {
			maxAge = strconv.Itoa(cfg.MaxAge)
		}
	}

	return func(ctx context.Context, c *app.RequestContext) {
		c.Response.Header.Set("Access-Control-Allow-Origin", allowOrigin)
		c.Response.Header.Set("Access-Control-Allow-Credentials", allowCredentials)
		c.Response.Header.Set("Access-Control-Expose-Headers", exposeHeaders)

		if string(c.Request.Method()) == consts.MethodOptions {
			c.Response.Header.Set("Access-Control-Allow-Methods", allowMethods)
			c.Response.Header.Set("Access-Control-Allow-Headers", allowHeaders)
			if maxAge != "" {
				c.Response.Header.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
