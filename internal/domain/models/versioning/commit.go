package versioning

import "time"

// Commit is a named, authored pointer to a tree, linked to its parent.
// CommitNumber is 1-based and increases by one per commit of a document.
type Commit struct {
	ID             string    `json:"id" db:"id"`
	DocumentID     string    `json:"document_id" db:"document_id"`
	ParentCommitID *string   `json:"parent_commit_id" db:"parent_commit_id"` // NULL = root commit
	TreeID         string    `json:"tree_id" db:"tree_id"`
	Name           string    `json:"name" db:"name"`
	CommitNumber   int       `json:"commit_number" db:"commit_number"`
	AuthorID       string    `json:"author_id" db:"author_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the commit has no parent
func (c *Commit) IsRoot() bool {
	return c.ParentCommitID == nil
}

// CommitPage is one page of a document's history, newest first.
// NextCursor is empty when IsDone is true.
type CommitPage struct {
	Commits    []Commit `json:"commits"`
	NextCursor string   `json:"next_cursor,omitempty"`
	IsDone     bool     `json:"is_done"`
}
