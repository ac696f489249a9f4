package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	filesvc "github.com/munify/doc_vault/biz/service/file"
	"github.com/munify/doc_vault/pkg/common"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnsupported  = "UNSUPPORTED"
	CodeStorage      = "STORAGE_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Ping is the liveness endpoint.
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, common.CommonResponse{Code: consts.StatusOK, Msg: "pong"})
}

func RespondData(c *app.RequestContext, status int, data any) {
	c.JSON(status, common.CommonResponse{
		Code: status,
		Msg:  http.StatusText(status),
		Data: data,
	})
}

func RespondError(c *app.RequestContext, status int, code, msg string) {
	c.JSON(status, common.CommonResponse{
		Code:  status,
		Error: code,
		Msg:   msg,
	})
}

// WriteServiceError maps file service errors onto HTTP statuses.
func WriteServiceError(ctx context.Context, c *app.RequestContext, err error) {
	var validationErr *filesvc.ValidationError
	var storageErr *filesvc.StorageError
	switch {
	case errors.As(err, &validationErr):
		RespondError(c, consts.StatusBadRequest, CodeValidation, validationErr.Error())
	case errors.Is(err, filesvc.ErrNotFound):
		RespondError(c, consts.StatusNotFound, CodeNotFound, "file not found")
	case errors.Is(err, filesvc.ErrAccessDenied):
		RespondError(c, consts.StatusForbidden, CodeForbidden, "access denied")
	case errors.Is(err, filesvc.ErrUnsupportedOperation):
		RespondError(c, consts.StatusNotImplemented, CodeUnsupported, err.Error())
	case errors.As(err, &storageErr):
		hlog.CtxErrorf(ctx, "storage failure: %v", err)
		RespondError(c, consts.StatusInternalServerError, CodeStorage, "storage operation failed")
	default:
		hlog.CtxErrorf(ctx, "unexpected error: %v", err)
		RespondError(c, consts.StatusInternalServerError, CodeInternal, "internal error")
	}
}
