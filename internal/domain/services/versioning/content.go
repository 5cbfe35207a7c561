package versioning

import (
	"context"
	"encoding/json"

	"quill/internal/domain/models/versioning"
)

// Hasher computes the content digest used to address blobs.
// The same implementation must be used when committing and when looking up.
type Hasher interface {
	// Digest returns the fixed-length lowercase hex digest of serialized
	Digest(serialized string) string
}

// BlockDecomposer splits a document into its ordered top-level blocks
type BlockDecomposer interface {
	// Decompose returns the canonical serialization of every top-level block.
	// A missing document yields one default empty paragraph.
	// Returns domain.ErrMalformedContent for invalid input.
	Decompose(doc json.RawMessage) ([]json.RawMessage, error)
}

// BlobStore resolves blocks to deduplicated blob IDs and loads them back
type BlobStore interface {
	// GetOrCreate returns the ID of the blob holding block, inserting it if needed
	GetOrCreate(ctx context.Context, documentID string, block json.RawMessage) (string, error)

	// Load returns one blob. Returns domain.ErrBlobMissing if it does not exist.
	Load(ctx context.Context, blobID string) (*versioning.Blob, error)

	// LoadAll returns the blobs in the given order.
	// Returns domain.ErrBlobMissing if any ID cannot be loaded.
	LoadAll(ctx context.Context, blobIDs []string) ([]versioning.Blob, error)
}

// TreeStore creates and loads immutable snapshot trees
type TreeStore interface {
	Create(ctx context.Context, documentID string, blobIDs []string) (*versioning.Tree, error)
	Get(ctx context.Context, treeID string) (*versioning.Tree, error)
}

// ContentConverter converts external markup into document JSON
type ContentConverter interface {
	// Convert transforms input into a { type: "doc", content: [...] } document
	Convert(ctx context.Context, input string) (json.RawMessage, error)
}

// TemplateCatalog lists the starter documents
type TemplateCatalog interface {
	List() []versioning.Template
	// Get returns domain.ErrTemplateNotFound for unknown IDs
	Get(id string) (*versioning.Template, error)
}
