package common

import (
	"context"
)

// CommonResponse is a lightweight response wrapper used by HTTP handlers.
type CommonResponse struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ReturnOK creates a HTTP 200 response.
func (CommonResponse) ReturnOK() CommonResponse {
	return CommonResponse{Code: 200}
}

type contextKey string

const (
	userIDKey         contextKey = "user_id"
	organizationIDKey contextKey = "organization_id"
)

// ContextWithUserID stores the caller's user ID into context.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID retrieves the user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ContextWithOrganizationID stores the organization the caller acts for.
func ContextWithOrganizationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, organizationIDKey, id)
}

// GetOrganizationID retrieves the acting organization from context.
func GetOrganizationID(ctx context.Context) string {
	id, _ := ctx.Value(organizationIDKey).(string)
	return id
}
