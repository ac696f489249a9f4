// Package errs holds the sentinel errors shared by every storage backend.
package errs

import "errors"

var (
	ErrNotFound           = errors.New("object not found")
	ErrPresignUnsupported = errors.New("presigned urls are not supported by this backend")
)
