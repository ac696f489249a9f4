package model

import "time"

// Audit actions recorded for file operations.
const (
	AuditUpload       = "upload"
	AuditDownload     = "download"
	AuditDelete       = "delete"
	AuditUpdateAccess = "update_access"
	AuditPresign      = "presign"
)

// AuditEvent is an append-only trail entry.
type AuditEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"index:idx_audit_entity" json:"created_at"`
	UserID     string    `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	EntityType string    `gorm:"column:entity_type;type:varchar(32);index:idx_audit_entity" json:"entity_type"`
	EntityID   string    `gorm:"column:entity_id;type:varchar(64);index:idx_audit_entity" json:"entity_id"`
	Action     string    `gorm:"column:action;type:varchar(32)" json:"action"`
	Details    string    `gorm:"column:details;type:text" json:"details,omitempty"`
}

func (AuditEvent) TableName() string {
	return "audit_event"
}
