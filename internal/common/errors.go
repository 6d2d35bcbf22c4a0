// Package common defines the sentinel errors shared across the service,
// repository and HTTP layers. Callers match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorEmailTaken = errors.New("email already registered")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorForbidden marks an ownership violation: the resource exists but
	// belongs to another user. The HTTP layer reports it as a plain 404 so
	// existence is not leaked; the distinction survives in logs and tests.
	ErrorForbidden = errors.New("forbidden")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorInvalidUpload = errors.New("invalid upload")

	// ErrorFolderNotEmpty rejects deletion of a folder that still contains
	// files or subfolders.
	ErrorFolderNotEmpty = errors.New("folder is not empty")

	// ErrorUpstreamStorage wraps failures of the object-storage backend.
	ErrorUpstreamStorage = errors.New("upstream storage error")

	// Auth errors.
	ErrInvalidToken    = errors.New("invalid token")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionNotFound = errors.New("session not found")
)

// PartialDeleteError reports a file delete that removed the blob but failed
// to remove the metadata row (or vice versa). It is surfaced with its own
// code so operators can reconcile the dangling half.
type PartialDeleteError struct {
	FileID     string
	StorageKey string
	Err        error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("partial delete of file %s (key %s): %v", e.FileID, e.StorageKey, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }
