package handler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/munify/doc_vault/biz/dal/model"
	filesvc "github.com/munify/doc_vault/biz/service/file"
	"github.com/munify/doc_vault/pkg/common"
)

// FileHandler exposes the document endpoints.
type FileHandler struct {
	service *filesvc.Service
}

func NewFileHandler(service *filesvc.Service) *FileHandler {
	return &FileHandler{service: service}
}

type updateAccessRequest struct {
	AccessLevel string `json:"access_level"`
}

// Upload handles multipart uploads.
func (h *FileHandler) Upload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, consts.StatusBadRequest, CodeValidation, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, consts.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}

	userID, _ := common.GetUserID(ctx)
	input := &filesvc.UploadInput{
		Data:               data,
		FileName:           fileHeader.Filename,
		ContentType:        fileHeader.Header.Get("Content-Type"),
		UploaderID:         userID,
		OrganizationID:     formOrHeader(c, "organization_id", common.GetOrganizationID(ctx)),
		Category:           string(c.FormValue("file_category")),
		DocumentType:       string(c.FormValue("document_type")),
		ProjectReferenceID: string(c.FormValue("project_reference_id")),
		AccessLevel:        string(c.FormValue("access_level")),
	}

	record, err := h.service.Upload(ctx, input)
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusCreated, record)
}

// GetMetadata returns the record of a file.
func (h *FileHandler) GetMetadata(ctx context.Context, c *app.RequestContext) {
	record, err := h.service.GetMetadata(ctx, c.Param("id"))
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusOK, record)
}

// Download streams stored file content back to the client.
func (h *FileHandler) Download(ctx context.Context, c *app.RequestContext) {
	record, reader, err := h.service.Download(ctx, c.Param("id"), requester(ctx))
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	writeContent(ctx, c, record, reader)
}

// SignedDownload serves locally signed URLs.
func (h *FileHandler) SignedDownload(ctx context.Context, c *app.RequestContext) {
	token := c.Query("token")
	if token == "" {
		RespondError(c, consts.StatusBadRequest, CodeValidation, "token is required")
		return
	}
	record, reader, err := h.service.SignedDownload(ctx, token)
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	writeContent(ctx, c, record, reader)
}

func (h *FileHandler) Delete(ctx context.Context, c *app.RequestContext) {
	userID, _ := common.GetUserID(ctx)
	fileID := c.Param("id")
	if err := h.service.Delete(ctx, fileID, userID); err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusOK, map[string]any{"file_id": fileID, "deleted": true})
}

func (h *FileHandler) UpdateAccessLevel(ctx context.Context, c *app.RequestContext) {
	var req updateAccessRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, consts.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}
	userID, _ := common.GetUserID(ctx)
	record, err := h.service.UpdateAccessLevel(ctx, c.Param("id"), userID, req.AccessLevel)
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusOK, record)
}

// PresignedURL returns a time-limited direct download link.
func (h *FileHandler) PresignedURL(ctx context.Context, c *app.RequestContext) {
	var expiry time.Duration
	if raw := strings.TrimSpace(c.Query("expires_in")); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || seconds <= 0 {
			RespondError(c, consts.StatusBadRequest, CodeValidation, "expires_in must be a positive number of seconds")
			return
		}
		expiry = time.Duration(seconds) * time.Second
	}
	link, err := h.service.GetPresignedURL(ctx, c.Param("id"), requester(ctx), expiry)
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusOK, link)
}

// List returns the readable files of an organization.
func (h *FileHandler) List(ctx context.Context, c *app.RequestContext) {
	orgID := c.Query("organization_id")
	if orgID == "" {
		orgID = common.GetOrganizationID(ctx)
	}
	records, err := h.service.ListByOrganization(ctx, orgID, requester(ctx), filesvc.ListFilter{
		Category:           c.Query("file_category"),
		DocumentType:       c.Query("document_type"),
		ProjectReferenceID: c.Query("project_reference_id"),
	})
	if err != nil {
		WriteServiceError(ctx, c, err)
		return
	}
	RespondData(c, consts.StatusOK, map[string]any{
		"files": records,
		"total": len(records),
	})
}

func requester(ctx context.Context) filesvc.Requester {
	userID, _ := common.GetUserID(ctx)
	return filesvc.Requester{
		UserID:         userID,
		OrganizationID: common.GetOrganizationID(ctx),
	}
}

func formOrHeader(c *app.RequestContext, key, fallback string) string {
	if v := strings.TrimSpace(string(c.FormValue(key))); v != "" {
		return v
	}
	return fallback
}

func writeContent(ctx context.Context, c *app.RequestContext, record *model.FileRecord, reader io.ReadCloser) {
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		WriteServiceError(ctx, c, &filesvc.StorageError{Op: "read", Err: err})
		return
	}

	contentType := record.MimeType
	if contentType == "" {
		contentType = consts.MIMEApplicationOctetStream
	}
	name := record.OriginalFileName
	if name == "" {
		name = record.FileName
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", record.FileName)
	}
	c.Response.Header.Set("Content-Disposition", disposition)
	c.Response.Header.Set("X-Checksum-Sha256", record.Checksum)
	c.Data(consts.StatusOK, contentType, content)
}
