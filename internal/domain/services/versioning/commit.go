package versioning

import (
	"context"
	"encoding/json"

	"quill/internal/domain/models/versioning"
)

// CommitService handles the commit graph of documents
type CommitService interface {
	// Commit snapshots content as a new commit on top of the document's current commit.
	// Returns domain.ErrNoChanges if the snapshot equals the current one.
	Commit(ctx context.Context, req *CommitRequest) (*versioning.Commit, error)

	// GetCommit retrieves a commit's metadata
	GetCommit(ctx context.Context, commitID string) (*versioning.Commit, error)

	// RenameCommit changes a commit's display name
	RenameCommit(ctx context.Context, commitID string, req *RenameCommitRequest) (*versioning.Commit, error)

	// ListCommits returns a page of a document's history, newest first
	// userID must own the document
	ListCommits(ctx context.Context, userID, documentID string, req *ListCommitsRequest) (*versioning.CommitPage, error)

	// Reconstruct rebuilds the document JSON stored by a commit
	Reconstruct(ctx context.Context, commitID string) (json.RawMessage, error)

	// GetCommitPath returns the ancestry of a commit, root first
	GetCommitPath(ctx context.Context, commitID string) ([]versioning.Commit, error)
}

// RestoreService moves a document's current pointer
type RestoreService interface {
	// Restore points the document at an existing commit of its own history
	Restore(ctx context.Context, documentID, commitID string) (*versioning.Document, error)
}

// DiffService compares snapshots
type DiffService interface {
	// Compare diffs a commit against the editor buffer or another commit
	Compare(ctx context.Context, req *CompareRequest) (*versioning.Comparison, error)
}

// CommitRequest represents a commit request
type CommitRequest struct {
	DocumentID string          `json:"-"`       // Set by handler from path
	AuthorID   string          `json:"-"`       // Set by handler from auth context
	Content    json.RawMessage `json:"content"` // Current editor JSON
}

// RenameCommitRequest represents a commit rename request
type RenameCommitRequest struct {
	Name string `json:"name"`
}

// ListCommitsRequest represents a history page request
type ListCommitsRequest struct {
	Cursor string `json:"cursor,omitempty"` // Opaque continuation cursor from the previous page
	Limit  int    `json:"limit,omitempty"`  // Page size (default: 20, max: 100)
}

// CompareRequest represents a diff request. Exactly one of OtherCommitID and
// Content is used; OtherCommitID wins when both are set.
type CompareRequest struct {
	CommitID      string          `json:"-"`
	OtherCommitID *string         `json:"other_commit_id,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
}
