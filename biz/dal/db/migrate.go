package db

import (
	"github.com/munify/doc_vault/biz/dal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&model.FileRecord{},
		&model.OrganizationMember{},
		&model.AuditEvent{},
	}
}

// Migrate creates or updates the service tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
