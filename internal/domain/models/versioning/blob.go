package versioning

import "time"

// Blob is the immutable, content-addressed payload of one block.
// Hash is the hex SHA-256 of Content and is unique per DocumentID.
type Blob struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Hash       string    `json:"hash" db:"hash"`
	Content    string    `json:"content" db:"content"` // Canonical JSON of one block
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Tree is one full snapshot: the ordered blob references of a document.
type Tree struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	BlobIDs    []string  `json:"blob_ids" db:"blob_ids"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
