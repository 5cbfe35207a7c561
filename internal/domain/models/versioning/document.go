package versioning

import (
	"encoding/json"
	"time"
)

// DocNodeType is the node type of the document wrapper.
const DocNodeType = "doc"

// Document is a versioned rich-text document. CurrentCommitID is the commit the
// document is "at"; RootCommitID is the commit created with the document.
type Document struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	CurrentCommitID *string   `json:"current_commit_id" db:"current_commit_id"`
	RootCommitID    *string   `json:"root_commit_id" db:"root_commit_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentJSON is the canonical document wrapper: { type: "doc", content: [block, ...] }
type DocumentJSON struct {
	Type    string            `json:"type"`
	Content []json.RawMessage `json:"content"`
}

// NewDocumentJSON wraps blocks into a document, never emitting a null content array.
func NewDocumentJSON(blocks []json.RawMessage) DocumentJSON {
	if blocks == nil {
		blocks = []json.RawMessage{}
	}
	return DocumentJSON{Type: DocNodeType, Content: blocks}
}
