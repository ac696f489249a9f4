package file

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/munify/doc_vault/biz/dal/model"
	"github.com/munify/doc_vault/pkg/metrics"
)

const auditEntityFile = "file"

// audit records a trail entry. Failures are logged and never surface.
func (s *Service) audit(ctx context.Context, userID, fileID, action, details string) {
	event := &model.AuditEvent{
		UserID:     userID,
		EntityType: auditEntityFile,
		EntityID:   fileID,
		Action:     action,
		Details:    details,
	}
	if err := s.logic.RecordAudit(ctx, event); err != nil {
		metrics.RecordAuditFailure()
		hlog.CtxWarnf(ctx, "audit %s on file %s: %v", action, fileID, err)
	}
}
