package file

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("file not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrUnsupportedOperation = errors.New("operation not supported by storage backend")
)

// ValidationError reports why an input was rejected. Err, when set, is the
// underlying sentinel (for example docpath.ErrMissingProjectReference).
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(reason string, err error) error {
	return &ValidationError{Reason: reason, Err: err}
}

// StorageError wraps an I/O failure talking to the blob store or the record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
