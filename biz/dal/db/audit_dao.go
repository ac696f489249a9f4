package db

import (
	"context"
	"errors"

	"github.com/munify/doc_vault/biz/dal/model"

	"gorm.io/gorm"
)

// AuditDAO appends and reads audit events.
type AuditDAO struct{}

func NewAuditDAO() *AuditDAO { return &AuditDAO{} }

func (dao *AuditDAO) Create(ctx context.Context, db *gorm.DB, event *model.AuditEvent) error {
	if event == nil {
		return errors.New("audit event must not be nil")
	}
	return db.WithContext(ctx).Create(event).Error
}

func (dao *AuditDAO) ListByEntity(ctx context.Context, db *gorm.DB, entityType, entityID string) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	if err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
