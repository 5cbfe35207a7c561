package versioning

import (
	"context"

	"quill/internal/domain/models/versioning"
)

// BlobRepository defines data access operations for content-addressed blobs
type BlobRepository interface {
	// CreateIfNotExists returns the blob with the same (document_id, hash) if one
	// exists, otherwise inserts blob. created reports whether a row was inserted.
	CreateIfNotExists(ctx context.Context, blob *versioning.Blob) (existing *versioning.Blob, created bool, err error)

	// GetByID retrieves a blob
	// Returns domain.ErrBlobMissing if not found
	GetByID(ctx context.Context, id string) (*versioning.Blob, error)

	// GetByIDs retrieves blobs in a single query, keyed by ID.
	// Missing IDs are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]versioning.Blob, error)

	// CountByDocument returns the number of distinct blobs stored for a document
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// TreeRepository defines data access operations for snapshot trees
type TreeRepository interface {
	// Create inserts a new tree; trees are never deduplicated
	Create(ctx context.Context, tree *versioning.Tree) error

	// GetByID retrieves a tree
	// Returns domain.ErrTreeNotFound if not found
	GetByID(ctx context.Context, id string) (*versioning.Tree, error)
}
