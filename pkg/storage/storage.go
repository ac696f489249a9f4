// Package storage defines the blob storage abstraction used by the document
// service. Backends hold no metadata: objects are addressed only by key.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/munify/doc_vault/pkg/storage/errs"
)

var (
	// ErrNotFound is returned when no object exists under the requested key.
	ErrNotFound = errs.ErrNotFound
	// ErrPresignUnsupported is returned by backends that cannot issue direct URLs.
	ErrPresignUnsupported = errs.ErrPresignUnsupported
)

// Storage defines the interface for object storage operations.
// All backends (local, S3-compatible) must implement this interface.
type Storage interface {
	// PutObject writes data under key, replacing any previous object.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject returns the content stored under key, or ErrNotFound.
	// The caller must close the returned reader.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes the object under key, or returns ErrNotFound.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists in storage.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// PresignURL returns a time-limited URL granting direct read access,
	// or ErrPresignUnsupported.
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Type returns the storage type identifier ("local" or "s3").
	Type() string
}
