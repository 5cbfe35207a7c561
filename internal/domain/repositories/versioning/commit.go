package versioning

import (
	"context"
	"time"

	"quill/internal/domain/models/versioning"
)

// CommitRepository defines data access operations for commits
type CommitRepository interface {
	// Create inserts a commit and fills in ID/timestamps
	Create(ctx context.Context, commit *versioning.Commit) error

	// GetByID retrieves a commit
	// Returns domain.ErrCommitNotFound if not found
	GetByID(ctx context.Context, id string) (*versioning.Commit, error)

	// CountByDocument returns the number of commits of a document
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// ListByDocument returns up to limit commits with commit_number < beforeNumber
	// (all commits when beforeNumber is nil), newest first.
	ListByDocument(ctx context.Context, documentID string, beforeNumber *int, limit int) ([]versioning.Commit, error)

	// GetPath returns the ancestry of a commit, root first, following
	// parent_commit_id for at most maxDepth commits.
	GetPath(ctx context.Context, id string, maxDepth int) ([]versioning.Commit, error)

	// UpdateName renames a commit
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) (*versioning.Commit, error)
}
