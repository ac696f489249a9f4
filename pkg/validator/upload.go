package validator

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadSize is used when no limit is configured.
const DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB

var (
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file too large")
	ErrMissingFileName     = errors.New("missing file name")
	ErrUnsupportedExt      = errors.New("unsupported file extension")
	ErrMissingContentType  = errors.New("missing content type")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// UploadConfig defines constraints for file uploads.
type UploadConfig struct {
	MaxFileSize       int64
	AllowedExtensions map[string]bool
	AllowedMimeTypes  map[string]bool
}

// NewUploadConfig builds an UploadConfig from configuration lists.
// An empty MIME list disables content-type checks; extensions are always enforced.
func NewUploadConfig(maxSize int64, extensions, mimeTypes []string) *UploadConfig {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	c := &UploadConfig{
		MaxFileSize:       maxSize,
		AllowedExtensions: make(map[string]bool, len(extensions)),
		AllowedMimeTypes:  make(map[string]bool, len(mimeTypes)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.AllowedExtensions[ext] = true
	}
	for _, m := range mimeTypes {
		if m = normalizeMimeType(m); m != "" {
			c.AllowedMimeTypes[m] = true
		}
	}
	return c
}

// ValidateFileSize checks if the file size is within the allowed limit.
func (c *UploadConfig) ValidateFileSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > c.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, c.MaxFileSize)
	}
	return nil
}

// ValidateExtension checks the file name extension against the allow-list
// and returns the normalized extension.
func (c *UploadConfig) ValidateExtension(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return "", ErrMissingFileName
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !c.AllowedExtensions[ext] {
		return ext, fmt.Errorf("%w: %q", ErrUnsupportedExt, ext)
	}
	return ext, nil
}

// ValidateMimeType checks if the MIME type is in the allowed whitelist.
func (c *UploadConfig) ValidateMimeType(mimeType string) error {
	normalized := normalizeMimeType(mimeType)
	if normalized == "" {
		return ErrMissingContentType
	}
	if len(c.AllowedMimeTypes) == 0 {
		return nil
	}
	if !c.AllowedMimeTypes[normalized] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, normalized)
	}
	return nil
}

// ResolveMimeType returns the declared content type, falling back to content
// sniffing when the client did not declare a specific type.
func ResolveMimeType(declared string, data []byte) string {
	normalized := normalizeMimeType(declared)
	if normalized != "" && normalized != "application/octet-stream" {
		return normalized
	}
	return normalizeMimeType(http.DetectContentType(data))
}

// Validate performs full validation on an upload and returns the resolved
// extension and MIME type.
func (c *UploadConfig) Validate(fileName, declaredType string, data []byte) (string, string, error) {
	if err := c.ValidateFileSize(int64(len(data))); err != nil {
		return "", "", err
	}
	ext, err := c.ValidateExtension(fileName)
	if err != nil {
		return "", "", err
	}
	mimeType := ResolveMimeType(declaredType, data)
	if err := c.ValidateMimeType(mimeType); err != nil {
		return "", "", err
	}
	return ext, mimeType, nil
}

// normalizeMimeType lowercases and strips parameters such as "; charset=utf-8".
func normalizeMimeType(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
