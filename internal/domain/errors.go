package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// ValidationError indicates invalid input. Field holds the offending
// request field when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Category sentinels - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrNoChanges is the soft outcome of committing a snapshot identical to
	// the current one. Nothing is written.
	ErrNoChanges = errors.New("no new changes")

	// ErrIntegrity marks stored state that references records which do not
	// exist (dangling pointers, missing blobs). Always logged as fatal.
	ErrIntegrity = errors.New("storage integrity violation")

	// ErrConsistency marks a write sequence that could not be applied as a
	// unit (the document pointer moved underneath a commit).
	ErrConsistency = errors.New("consistency violation")
)

// Versioning errors. Each wraps exactly one category above.
var (
	ErrDocumentNotFound       = fmt.Errorf("document not found: %w", ErrNotFound)
	ErrCommitNotFound         = fmt.Errorf("commit not found: %w", ErrNotFound)
	ErrTreeNotFound           = fmt.Errorf("tree not found: %w", ErrNotFound)
	ErrTemplateNotFound       = fmt.Errorf("template not found: %w", ErrNotFound)
	ErrBlobMissing            = fmt.Errorf("blob missing: %w", ErrIntegrity)
	ErrCurrentCommitMissing   = fmt.Errorf("current commit id not found: %w", ErrIntegrity)
	ErrCurrentCommitNotFound  = fmt.Errorf("current commit not found: %w", ErrIntegrity)
	ErrEmptyName              = fmt.Errorf("commit name cannot be empty: %w", ErrValidation)
	ErrCommitDocumentMismatch = fmt.Errorf("commit does not belong to the given document: %w", ErrValidation)
	ErrMalformedContent       = fmt.Errorf("malformed document content: %w", ErrValidation)
	ErrPointerConflict        = fmt.Errorf("current commit moved during commit: %w", ErrConsistency)
)
