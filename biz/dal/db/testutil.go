package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/munify/doc_vault/biz/dal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, db) })
	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestFileRecord inserts a live KYC record with default values.
func CreateTestFileRecord(t *testing.T, db *gorm.DB, orgID, uploader, access string) *model.FileRecord {
	t.Helper()
	record := &model.FileRecord{
		OrganizationID:   orgID,
		UploadedBy:       uploader,
		CreatedBy:        uploader,
		Category:         "KYC",
		DocumentType:     "PAN",
		FileName:         uuid.NewString() + ".pdf",
		OriginalFileName: "pan.pdf",
		MimeType:         "application/pdf",
		FileSize:         4,
		AccessLevel:      access,
	}
	record.StoragePath = orgID + "/KYC/PAN/" + record.FileName
	if err := NewFileRecordDAO().Create(context.Background(), db, record); err != nil {
		t.Fatalf("Failed to create test file record: %v", err)
	}
	return record
}

// CreateTestMember adds a user to an organization with the given role.
func CreateTestMember(t *testing.T, db *gorm.DB, orgID, userID, role string) {
	t.Helper()
	member := &model.OrganizationMember{OrganizationID: orgID, UserID: userID, Role: role}
	if err := NewMembershipDAO().Upsert(context.Background(), db, member); err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
}
