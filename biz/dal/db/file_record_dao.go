package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/munify/doc_vault/biz/dal/model"

	"gorm.io/gorm"
)

// FileRecordDAO handles persistence of file metadata.
type FileRecordDAO struct{}

func NewFileRecordDAO() *FileRecordDAO { return &FileRecordDAO{} }

// FileFilter narrows organization listings. Empty fields are ignored.
type FileFilter struct {
	Category           string
	DocumentType       string
	ProjectReferenceID string
}

// Create persists a new record. If no file id is provided a UUID is assigned.
// A zero Version is replaced by the next version of the same document slot.
func (dao *FileRecordDAO) Create(ctx context.Context, db *gorm.DB, record *model.FileRecord) error {
	if record == nil {
		return errors.New("file record must not be nil")
	}
	if record.FileID == "" {
		record.FileID = uuid.NewString()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.Version == 0 {
			latest, err := dao.LatestVersion(ctx, tx, record)
			if err != nil {
				return err
			}
			record.Version = latest + 1
		}
		return tx.Create(record).Error
	})
}

// LatestVersion returns the highest version stored for the record's
// organization, category, document type, project reference and original
// file name, counting soft-deleted rows. Zero means no earlier upload.
func (dao *FileRecordDAO) LatestVersion(ctx context.Context, db *gorm.DB, record *model.FileRecord) (int, error) {
	var latest int
	err := db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("organization_id = ? AND category = ? AND document_type = ? AND project_reference_id = ? AND original_file_name = ?",
			record.OrganizationID, record.Category, record.DocumentType, record.ProjectReferenceID, record.OriginalFileName).
		Select("COALESCE(MAX(version), 0)").
		Scan(&latest).Error
	return latest, err
}

// GetByFileID returns the record including soft-deleted ones; callers decide
// how to treat IsDeleted.
func (dao *FileRecordDAO) GetByFileID(ctx context.Context, db *gorm.DB, fileID string) (*model.FileRecord, error) {
	var record model.FileRecord
	if err := db.WithContext(ctx).Where("file_id = ?", fileID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByStoragePath looks a record up by its storage key.
func (dao *FileRecordDAO) GetByStoragePath(ctx context.Context, db *gorm.DB, storagePath string) (*model.FileRecord, error) {
	var record model.FileRecord
	if err := db.WithContext(ctx).Where("storage_path = ?", storagePath).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateAccessLevel changes the access level of a live record.
func (dao *FileRecordDAO) UpdateAccessLevel(ctx context.Context, db *gorm.DB, fileID, level, updatedBy string) error {
	result := db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("file_id = ? AND is_deleted = ?", fileID, false).
		Updates(map[string]any{
			"access_level": level,
			"updated_by":   updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete flags a live record as deleted. Deleting an already deleted
// record reports gorm.ErrRecordNotFound.
func (dao *FileRecordDAO) SoftDelete(ctx context.Context, db *gorm.DB, fileID, deletedBy string, at time.Time) error {
	result := db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("file_id = ? AND is_deleted = ?", fileID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": at,
			"deleted_by": deletedBy,
			"updated_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementDownloadCount bumps the counter atomically in the database.
func (dao *FileRecordDAO) IncrementDownloadCount(ctx context.Context, db *gorm.DB, fileID string) error {
	result := db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("file_id = ?", fileID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByOrganization returns live records of an organization, newest first.
func (dao *FileRecordDAO) ListByOrganization(ctx context.Context, db *gorm.DB, organizationID string, filter FileFilter) ([]model.FileRecord, error) {
	query := db.WithContext(ctx).
		Where("organization_id = ? AND is_deleted = ?", organizationID, false)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.DocumentType != "" {
		query = query.Where("document_type = ?", filter.DocumentType)
	}
	if filter.ProjectReferenceID != "" {
		query = query.Where("project_reference_id = ?", filter.ProjectReferenceID)
	}

	var records []model.FileRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindInBatches walks every record, including soft-deleted ones.
func (dao *FileRecordDAO) FindInBatches(ctx context.Context, db *gorm.DB, batchSize int, fn func([]model.FileRecord) error) error {
	var batch []model.FileRecord
	return db.WithContext(ctx).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
