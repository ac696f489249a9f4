// Package file implements document upload, retrieval and access control on
// top of the storage backend and the file record store.
package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/munify/doc_vault/biz/dal/db"
	"github.com/munify/doc_vault/biz/dal/model"
	"github.com/munify/doc_vault/pkg/docpath"
	"github.com/munify/doc_vault/pkg/metrics"
	"github.com/munify/doc_vault/pkg/storage"
	"github.com/munify/doc_vault/pkg/validator"
	"gorm.io/gorm"
)

const (
	DefaultPresignExpiry = time.Hour
	MaxPresignExpiry     = 7 * 24 * time.Hour
)

// UploadInput captures metadata and payload for a document upload.
type UploadInput struct {
	Data               []byte
	FileName           string
	ContentType        string
	UploaderID         string
	OrganizationID     string
	Category           string
	DocumentType       string
	ProjectReferenceID string
	AccessLevel        string
}

// PresignedURL is a time-limited direct download link.
type PresignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListFilter narrows ListByOrganization results. Empty fields match everything.
type ListFilter struct {
	Category           string
	DocumentType       string
	ProjectReferenceID string
}

// tokenVerifier is implemented by backends that issue their own signed URLs.
type tokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// Service orchestrates document operations.
type Service struct {
	logic   *Logic
	storage storage.Storage
	upload  *validator.UploadConfig
}

func NewService(dbConn *gorm.DB, store storage.Storage, upload *validator.UploadConfig) *Service {
	if upload == nil {
		upload = validator.NewUploadConfig(0, nil, nil)
	}
	return &Service{
		logic:   NewLogic(dbConn),
		storage: store,
		upload:  upload,
	}
}

// Logic exposes the persistence layer, used by tooling and tests.
func (s *Service) Logic() *Logic {
	return s.logic
}

// Upload validates the document, writes it to storage and persists its record.
func (s *Service) Upload(ctx context.Context, input *UploadInput) (*model.FileRecord, error) {
	if input == nil {
		return nil, invalid("upload input is required", nil)
	}
	uploader := strings.TrimSpace(input.UploaderID)
	if uploader == "" {
		return nil, invalid("uploader is required", nil)
	}
	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, invalid("", docpath.ErrMissingOrganization)
	}

	ext, mimeType, err := s.upload.Validate(input.FileName, input.ContentType, input.Data)
	if err != nil {
		metrics.RecordUpload("invalid", 0, false)
		return nil, invalid("", err)
	}

	accessLevel := strings.ToLower(strings.TrimSpace(input.AccessLevel))
	if accessLevel == "" {
		accessLevel = model.AccessPrivate
	}
	if !model.ValidAccessLevel(accessLevel) {
		return nil, invalid(fmt.Sprintf("invalid access level %q", input.AccessLevel), nil)
	}

	category, err := docpath.ParseCategory(input.Category)
	if err != nil {
		return nil, invalid("", err)
	}
	projectRef := strings.TrimSpace(input.ProjectReferenceID)
	prefix, err := docpath.BuildPath(orgID, category, input.DocumentType, projectRef)
	if err != nil {
		return nil, invalid("", err)
	}
	if !category.RequiresProjectReference() {
		projectRef = ""
	}

	storedName := uuid.NewString() + ext
	key := prefix + storedName
	size := int64(len(input.Data))
	sum := sha256.Sum256(input.Data)

	if err := s.put(ctx, key, input.Data, mimeType); err != nil {
		metrics.RecordUpload(string(category), 0, false)
		return nil, &StorageError{Op: "put", Err: err}
	}

	record := &model.FileRecord{
		OrganizationID:     orgID,
		UploadedBy:         uploader,
		ProjectReferenceID: projectRef,
		Category:           string(category),
		DocumentType:       input.DocumentType,
		FileName:           storedName,
		OriginalFileName:   filepath.Base(input.FileName),
		MimeType:           mimeType,
		FileSize:           size,
		StoragePath:        key,
		Checksum:           hex.EncodeToString(sum[:]),
		AccessLevel:        accessLevel,
		CreatedBy:          uploader,
		UpdatedBy:          uploader,
	}
	if err := s.logic.CreateFile(ctx, record); err != nil {
		// Rollback: the blob has no record pointing at it.
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			hlog.CtxErrorf(ctx, "upload rollback failed, orphan blob %s: %v", key, delErr)
		}
		metrics.RecordUpload(string(category), 0, false)
		return nil, &StorageError{Op: "record", Err: err}
	}

	metrics.RecordUpload(string(category), size, true)
	hlog.CtxInfof(ctx, "file %s uploaded by %s to %s (%d bytes)", record.FileID, uploader, key, size)
	s.audit(ctx, uploader, record.FileID, model.AuditUpload, record.OriginalFileName)
	return record, nil
}

// Download returns the record and a reader over the stored bytes. The caller
// must close the reader.
func (s *Service) Download(ctx context.Context, fileID string, req Requester) (*model.FileRecord, io.ReadCloser, error) {
	record, err := s.logic.GetLiveFile(ctx, fileID)
	if err != nil {
		metrics.RecordDownload(0, false)
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, record, req); err != nil {
		metrics.RecordDownload(0, false)
		return nil, nil, err
	}

	reader, err := s.get(ctx, record.StoragePath)
	if err != nil {
		metrics.RecordDownload(0, false)
		if errors.Is(err, storage.ErrNotFound) {
			hlog.CtxWarnf(ctx, "file %s has no blob at %s", record.FileID, record.StoragePath)
			return nil, nil, fmt.Errorf("%w: blob missing", ErrNotFound)
		}
		return nil, nil, &StorageError{Op: "get", Err: err}
	}

	if err := s.logic.IncrementDownloadCount(ctx, record.FileID); err != nil {
		hlog.CtxWarnf(ctx, "increment download count for %s: %v", record.FileID, err)
	} else {
		record.DownloadCount++
	}
	metrics.RecordDownload(record.FileSize, true)
	s.audit(ctx, req.UserID, record.FileID, model.AuditDownload, "")
	return record, reader, nil
}

// GetMetadata returns the record of a live file.
func (s *Service) GetMetadata(ctx context.Context, fileID string) (*model.FileRecord, error) {
	return s.logic.GetLiveFile(ctx, fileID)
}

// Delete soft deletes a file. The stored blob is kept.
func (s *Service) Delete(ctx context.Context, fileID, requesterID string) error {
	record, err := s.logic.GetLiveFile(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(ctx, record, requesterID); err != nil {
		return err
	}
	if err := s.logic.SoftDeleteFile(ctx, fileID, requesterID); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "file %s deleted by %s", fileID, requesterID)
	s.audit(ctx, requesterID, fileID, model.AuditDelete, "")
	return nil
}

// UpdateAccessLevel changes who may read a file.
func (s *Service) UpdateAccessLevel(ctx context.Context, fileID, requesterID, level string) (*model.FileRecord, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if !model.ValidAccessLevel(level) {
		return nil, invalid(fmt.Sprintf("invalid access level %q", level), nil)
	}
	record, err := s.logic.GetLiveFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(ctx, record, requesterID); err != nil {
		return nil, err
	}
	previous := record.AccessLevel
	if err := s.logic.UpdateAccessLevel(ctx, fileID, level, requesterID); err != nil {
		return nil, err
	}
	updated, err := s.logic.GetLiveFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, requesterID, fileID, model.AuditUpdateAccess, previous+" -> "+level)
	return updated, nil
}

// GetPresignedURL issues a direct download link valid for expiry. Zero means
// DefaultPresignExpiry.
func (s *Service) GetPresignedURL(ctx context.Context, fileID string, req Requester, expiry time.Duration) (*PresignedURL, error) {
	if expiry == 0 {
		expiry = DefaultPresignExpiry
	}
	if expiry < time.Second || expiry > MaxPresignExpiry {
		return nil, invalid(fmt.Sprintf("expires_in must be between 1 and %d seconds", int64(MaxPresignExpiry.Seconds())), nil)
	}
	record, err := s.logic.GetLiveFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, record, req); err != nil {
		return nil, err
	}

	start := time.Now()
	url, err := s.storage.PresignURL(ctx, record.StoragePath, expiry)
	metrics.RecordStorageOperation(s.storage.Type(), "presign", time.Since(start), err)
	if err != nil {
		metrics.RecordPresign(false)
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, s.storage.Type())
		}
		return nil, &StorageError{Op: "presign", Err: err}
	}
	metrics.RecordPresign(true)
	s.audit(ctx, req.UserID, fileID, model.AuditPresign, fmt.Sprintf("expires_in=%d", int64(expiry.Seconds())))
	return &PresignedURL{URL: url, ExpiresAt: start.Add(expiry).UTC()}, nil
}

// ListByOrganization returns the live files of an organization the requester
// may read, newest first.
func (s *Service) ListByOrganization(ctx context.Context, organizationID string, req Requester, filter ListFilter) ([]model.FileRecord, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, invalid("", docpath.ErrMissingOrganization)
	}
	if filter.Category != "" {
		category, err := docpath.ParseCategory(filter.Category)
		if err != nil {
			return nil, invalid("", err)
		}
		filter.Category = string(category)
	}
	records, err := s.logic.ListFiles(ctx, organizationID, db.FileFilter{
		Category:           filter.Category,
		DocumentType:       filter.DocumentType,
		ProjectReferenceID: filter.ProjectReferenceID,
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	role, err := s.requesterRole(ctx, organizationID, req)
	if err != nil {
		return nil, &StorageError{Op: "membership", Err: err}
	}
	visible := make([]model.FileRecord, 0, len(records))
	for i := range records {
		if canRead(&records[i], req, role) {
			visible = append(visible, records[i])
		}
	}
	return visible, nil
}

// SignedDownload serves a file through a URL issued by GetPresignedURL on a
// backend that signs its own URLs.
func (s *Service) SignedDownload(ctx context.Context, token string) (*model.FileRecord, io.ReadCloser, error) {
	verifier, ok := s.storage.(tokenVerifier)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, s.storage.Type())
	}
	key, err := verifier.VerifyToken(token)
	if err != nil {
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, s.storage.Type())
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	record, err := s.logic.GetLiveFileByPath(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: blob missing", ErrNotFound)
		}
		return nil, nil, &StorageError{Op: "get", Err: err}
	}
	if err := s.logic.IncrementDownloadCount(ctx, record.FileID); err != nil {
		hlog.CtxWarnf(ctx, "increment download count for %s: %v", record.FileID, err)
	}
	metrics.RecordDownload(record.FileSize, true)
	return record, reader, nil
}

func (s *Service) put(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()
	err := s.storage.PutObject(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	metrics.RecordStorageOperation(s.storage.Type(), "put", time.Since(start), err)
	return err
}

func (s *Service) get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	reader, err := s.storage.GetObject(ctx, key)
	metrics.RecordStorageOperation(s.storage.Type(), "get", time.Since(start), err)
	return reader, err
}
