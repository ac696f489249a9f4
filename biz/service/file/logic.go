package file

import (
	"context"
	"errors"
	"time"

	"github.com/munify/doc_vault/biz/dal/db"
	"github.com/munify/doc_vault/biz/dal/model"
	"gorm.io/gorm"
)

// Logic contains persistence rules on top of the DAOs.
type Logic struct {
	db        *gorm.DB
	fileDAO   *db.FileRecordDAO
	memberDAO *db.MembershipDAO
	auditDAO  *db.AuditDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:        dbConn,
		fileDAO:   db.NewFileRecordDAO(),
		memberDAO: db.NewMembershipDAO(),
		auditDAO:  db.NewAuditDAO(),
	}
}

func (l *Logic) CreateFile(ctx context.Context, record *model.FileRecord) error {
	return l.fileDAO.Create(ctx, l.db, record)
}

// GetFile returns a record regardless of its soft-delete flag.
func (l *Logic) GetFile(ctx context.Context, fileID string) (*model.FileRecord, error) {
	record, err := l.fileDAO.GetByFileID(ctx, l.db, fileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return record, err
}

// GetLiveFile returns a record that has not been soft deleted.
func (l *Logic) GetLiveFile(ctx context.Context, fileID string) (*model.FileRecord, error) {
	record, err := l.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if record.IsDeleted {
		return nil, ErrNotFound
	}
	return record, nil
}

func (l *Logic) GetLiveFileByPath(ctx context.Context, storagePath string) (*model.FileRecord, error) {
	record, err := l.fileDAO.GetByStoragePath(ctx, l.db, storagePath)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if record.IsDeleted {
		return nil, ErrNotFound
	}
	return record, nil
}

func (l *Logic) SoftDeleteFile(ctx context.Context, fileID, deletedBy string) error {
	err := l.fileDAO.SoftDelete(ctx, l.db, fileID, deletedBy, time.Now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (l *Logic) UpdateAccessLevel(ctx context.Context, fileID, level, updatedBy string) error {
	err := l.fileDAO.UpdateAccessLevel(ctx, l.db, fileID, level, updatedBy)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (l *Logic) IncrementDownloadCount(ctx context.Context, fileID string) error {
	return l.fileDAO.IncrementDownloadCount(ctx, l.db, fileID)
}

func (l *Logic) ListFiles(ctx context.Context, organizationID string, filter db.FileFilter) ([]model.FileRecord, error) {
	return l.fileDAO.ListByOrganization(ctx, l.db, organizationID, filter)
}

func (l *Logic) WalkFiles(ctx context.Context, batchSize int, fn func([]model.FileRecord) error) error {
	return l.fileDAO.FindInBatches(ctx, l.db, batchSize, fn)
}

// Role returns the user's role in the organization, "" for non-members.
func (l *Logic) Role(ctx context.Context, organizationID, userID string) (string, error) {
	if organizationID == "" || userID == "" {
		return "", nil
	}
	return l.memberDAO.GetRole(ctx, l.db, organizationID, userID)
}

func (l *Logic) AddMember(ctx context.Context, member *model.OrganizationMember) error {
	return l.memberDAO.Upsert(ctx, l.db, member)
}

func (l *Logic) RecordAudit(ctx context.Context, event *model.AuditEvent) error {
	return l.auditDAO.Create(ctx, l.db, event)
}

func (l *Logic) ListAudit(ctx context.Context, fileID string) ([]model.AuditEvent, error) {
	return l.auditDAO.ListByEntity(ctx, l.db, auditEntityFile, fileID)
}
