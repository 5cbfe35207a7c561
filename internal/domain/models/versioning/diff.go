package versioning

import "encoding/json"

// Highlight colors applied to annotated text leaves
const (
	AddedHighlightColor   = "#7CFF8C"
	RemovedHighlightColor = "#FF7C7C"
)

// TextLeaf is one text-bearing inline node extracted from a document.
type TextLeaf struct {
	Text       string `json:"text"`
	BlockIndex int    `json:"block_index"` // Index of the top-level block containing the leaf
	Path       string `json:"path"`        // gjson/sjson path of the node inside the document
}

// DiffResult holds indices of leaves present only in the other sequence
// (additions) or only in the base sequence (deletions), ascending.
type DiffResult struct {
	Additions []int `json:"additions"`
	Deletions []int `json:"deletions"`
}

// Comparison is a diff rendered onto both documents.
// Added is the other document with additions highlighted; Removed is the base
// document with deletions highlighted.
type Comparison struct {
	BaseCommitID  string          `json:"base_commit_id,omitempty"`
	OtherCommitID *string         `json:"other_commit_id,omitempty"`
	Added         json.RawMessage `json:"added"`
	Removed       json.RawMessage `json:"removed"`
	Additions     []TextLeaf      `json:"additions"`
	Deletions     []TextLeaf      `json:"deletions"`
}
