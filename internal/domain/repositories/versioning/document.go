package versioning

import (
	"context"

	"quill/internal/domain/models/versioning"
)

// DocumentRepository defines data access operations for versioned documents
type DocumentRepository interface {
	// Create inserts a document without commit pointers and fills in ID/timestamps
	Create(ctx context.Context, doc *versioning.Document) error

	// GetByID retrieves a document
	// Returns domain.ErrDocumentNotFound if not found
	GetByID(ctx context.Context, id string) (*versioning.Document, error)

	// GetForUpdate retrieves a document and locks it until the surrounding
	// transaction ends. Serializes commits per document.
	GetForUpdate(ctx context.Context, id string) (*versioning.Document, error)

	// InitializePointers sets both the current and the root commit of a new document
	InitializePointers(ctx context.Context, id, rootCommitID string) error

	// AdvanceCurrentCommit moves the current pointer from expectedCurrentID to
	// newCommitID (compare-and-swap).
	// Returns domain.ErrPointerConflict if the pointer no longer equals expectedCurrentID
	AdvanceCurrentCommit(ctx context.Context, id, expectedCurrentID, newCommitID string) error

	// SetCurrentCommit moves the current pointer unconditionally (restore)
	SetCurrentCommit(ctx context.Context, doc *versioning.Document) error

	// Delete removes a document together with its commits, trees and blobs
	Delete(ctx context.Context, id string) error
}
