package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/munify/doc_vault/biz/handler"
	"github.com/munify/doc_vault/biz/middleware"
)

// RegisterFileRoutes configures HTTP routes for document APIs.
func RegisterFileRoutes(r *server.Hertz, h *handler.FileHandler) {
	r.GET("/ping", handler.Ping)
	if h == nil {
		return
	}

	v1 := r.Group("/api/v1")
	files := v1.Group("/files")

	files.GET("", h.List)
	files.GET("/signed", h.SignedDownload)
	files.GET("/:id", h.GetMetadata)
	// Reads are open; the file's access level decides who gets the bytes.
	files.GET("/:id/download", h.Download)
	files.GET("/:id/url", h.PresignedURL)

	files.POST("/upload", chain(nil, h.Upload)...)
	files.DELETE("/:id", chain(middleware.FileWriteLockMw(), h.Delete)...)
	files.PATCH("/:id/access", chain(middleware.FileWriteLockMw(), h.UpdateAccessLevel)...)
}

// chain puts RequireAuth in front of extra middleware and the handler.
func chain(extra []app.HandlerFunc, h app.HandlerFunc) []app.HandlerFunc {
	handlers := make([]app.HandlerFunc, 0, len(extra)+2)
	handlers = append(handlers, middleware.RequireAuth())
	handlers = append(handlers, extra...)
	return append(handlers, h)
}
