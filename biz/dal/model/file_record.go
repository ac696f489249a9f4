package model

import (
	"time"
)

// Access levels controlling who may read a file.
const (
	AccessPrivate    = "private"
	AccessRestricted = "restricted"
	AccessPublic     = "public"
)

// ValidAccessLevel reports whether level is one of the known access levels.
func ValidAccessLevel(level string) bool {
	switch level {
	case AccessPrivate, AccessRestricted, AccessPublic:
		return true
	}
	return false
}

// FileRecord stores metadata for an uploaded document. Records are soft
// deleted only; the blob at StoragePath is never removed by the service.
// Version counts uploads of the same original file name within one document
// slot (organization, category, document type, project reference).
type FileRecord struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	FileID             string     `gorm:"column:file_id;type:varchar(36);uniqueIndex:uk_file_id" json:"file_id"`
	OrganizationID     string     `gorm:"column:organization_id;type:varchar(64);index:idx_file_org" json:"organization_id"`
	UploadedBy         string     `gorm:"column:uploaded_by;type:varchar(64);index:idx_file_uploader" json:"uploaded_by"`
	ProjectReferenceID string     `gorm:"column:project_reference_id;type:varchar(64);index:idx_file_project" json:"project_reference_id,omitempty"`
	Category           string     `gorm:"column:category;type:varchar(32)" json:"file_category"`
	DocumentType       string     `gorm:"column:document_type;type:varchar(64)" json:"document_type"`
	FileName           string     `gorm:"column:file_name;type:varchar(255)" json:"filename"`
	OriginalFileName   string     `gorm:"column:original_file_name;type:varchar(255)" json:"original_filename"`
	MimeType           string     `gorm:"column:mime_type;type:varchar(128)" json:"mime_type"`
	FileSize           int64      `gorm:"column:file_size" json:"file_size"`
	StoragePath        string     `gorm:"column:storage_path;type:text" json:"storage_path"`
	Checksum           string     `gorm:"column:checksum;type:varchar(64)" json:"checksum"`
	Version            int        `gorm:"column:version;default:1" json:"version"`
	AccessLevel        string     `gorm:"column:access_level;type:varchar(16);default:private" json:"access_level"`
	DownloadCount      int64      `gorm:"column:download_count;default:0" json:"download_count"`
	IsDeleted          bool       `gorm:"column:is_deleted;default:false;index:idx_file_org" json:"is_deleted"`
	DeletedAt          *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	DeletedBy          string     `gorm:"column:deleted_by;type:varchar(64)" json:"deleted_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CreatedBy          string     `gorm:"column:created_by;type:varchar(64)" json:"created_by,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
	UpdatedBy          string     `gorm:"column:updated_by;type:varchar(64)" json:"updated_by,omitempty"`
}

// TableName overrides gorm to use file_record table.
func (FileRecord) TableName() string {
	return "file_record"
}
