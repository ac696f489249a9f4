package file

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/munify/doc_vault/biz/dal/model"
	"github.com/munify/doc_vault/pkg/metrics"
)

// Requester identifies the caller of a read operation. Both fields may be
// empty for anonymous callers.
type Requester struct {
	UserID         string
	OrganizationID string
}

// requesterRole returns the requester's role in organizationID. A requester
// acting for another organization gets no role there.
func (s *Service) requesterRole(ctx context.Context, organizationID string, req Requester) (string, error) {
	if req.UserID == "" {
		return "", nil
	}
	if req.OrganizationID != "" && req.OrganizationID != organizationID {
		return "", nil
	}
	return s.logic.Role(ctx, organizationID, req.UserID)
}

// canRead applies the access level policy given the requester's role in the
// file's organization.
func canRead(record *model.FileRecord, req Requester, role string) bool {
	switch record.AccessLevel {
	case model.AccessPublic:
		return true
	case model.AccessRestricted:
		return (req.UserID != "" && req.UserID == record.UploadedBy) || role != ""
	case model.AccessPrivate:
		return (req.UserID != "" && req.UserID == record.UploadedBy) || role == model.RoleAdmin
	default:
		return false
	}
}

func (s *Service) authorizeRead(ctx context.Context, record *model.FileRecord, req Requester) error {
	if record.AccessLevel == model.AccessPublic {
		metrics.RecordPermissionCheck(true)
		return nil
	}
	role, err := s.requesterRole(ctx, record.OrganizationID, req)
	if err != nil {
		return &StorageError{Op: "membership", Err: err}
	}
	allowed := canRead(record, req, role)
	metrics.RecordPermissionCheck(allowed)
	if !allowed {
		hlog.CtxInfof(ctx, "read of file %s denied for user %q", record.FileID, req.UserID)
		return fmt.Errorf("%w: user %q may not read file %s", ErrAccessDenied, req.UserID, record.FileID)
	}
	return nil
}

// authorizeManage allows the uploader or an admin of the file's organization.
func (s *Service) authorizeManage(ctx context.Context, record *model.FileRecord, requesterID string) error {
	if requesterID == "" {
		metrics.RecordPermissionCheck(false)
		return fmt.Errorf("%w: requester is required", ErrAccessDenied)
	}
	if requesterID == record.UploadedBy {
		metrics.RecordPermissionCheck(true)
		return nil
	}
	role, err := s.logic.Role(ctx, record.OrganizationID, requesterID)
	if err != nil {
		return &StorageError{Op: "membership", Err: err}
	}
	allowed := role == model.RoleAdmin
	metrics.RecordPermissionCheck(allowed)
	if !allowed {
		return fmt.Errorf("%w: user %q may not modify file %s", ErrAccessDenied, requesterID, record.FileID)
	}
	return nil
}
