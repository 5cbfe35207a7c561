package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	repo "quill/internal/domain/repositories/versioning"

	"github.com/google/uuid"
)

// CommitRepository implements repo.CommitRepository on a Store
type CommitRepository struct {
	store *Store
}

// NewCommitRepository creates a commit repository backed by store
func NewCommitRepository(store *Store) repo.CommitRepository {
	return &CommitRepository{store: store}
}

// Create inserts a commit. commit_number must be unique per document.
func (r *CommitRepository) Create(ctx context.Context, commit *models.Commit) error {
	s := r.store
	return s.write(ctx, func() (func(), error) {
		if _, ok := s.documents[commit.DocumentID]; !ok {
			return nil, fmt.Errorf("document %s: %w", commit.DocumentID, domain.ErrDocumentNotFound)
		}
		for _, id := range s.commitsByDoc[commit.DocumentID] {
			if s.commits[id].CommitNumber == commit.CommitNumber {
				return nil, fmt.Errorf("commit number %d: %w", commit.CommitNumber, domain.ErrPointerConflict)
			}
		}

		commit.ID = uuid.NewString()
		commit.CreatedAt = stamp(commit.CreatedAt)
		commit.UpdatedAt = stamp(commit.UpdatedAt)
		s.commits[commit.ID] = *commit

		docID := commit.DocumentID
		prevIDs := s.commitsByDoc[docID]
		s.commitsByDoc[docID] = append(prevIDs[:len(prevIDs):len(prevIDs)], commit.ID)

		id := commit.ID
		return func() {
			delete(s.commits, id)
			if prevIDs == nil {
				delete(s.commitsByDoc, docID)
			} else {
				s.commitsByDoc[docID] = prevIDs
			}
		}, nil
	})
}

// GetByID retrieves a commit by ID
func (r *CommitRepository) GetByID(ctx context.Context, id string) (*models.Commit, error) {
	var (
		commit models.Commit
		ok     bool
	)
	r.store.read(func() { commit, ok = r.store.commits[id] })
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
	}
	return &commit, nil
}

// CountByDocument returns the number of commits of a document
func (r *CommitRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	r.store.read(func() { count = len(r.store.commitsByDoc[documentID]) })
	return count, nil
}

// ListByDocument returns commits newest first, below beforeNumber when set
func (r *CommitRepository) ListByDocument(ctx context.Context, documentID string, beforeNumber *int, limit int) ([]models.Commit, error) {
	commits := []models.Commit{}
	r.store.read(func() {
		ids := r.store.commitsByDoc[documentID]
		for i := len(ids) - 1; i >= 0 && len(commits) < limit; i-- {
			c := r.store.commits[ids[i]]
			if beforeNumber != nil && c.CommitNumber >= *beforeNumber {
				continue
			}
			commits = append(commits, c)
		}
	})
	return commits, nil
}

// GetPath follows parent links from id for at most maxDepth commits and
// returns them root first
func (r *CommitRepository) GetPath(ctx context.Context, id string, maxDepth int) ([]models.Commit, error) {
	var path []models.Commit
	r.store.read(func() {
		next := &id
		for next != nil && len(path) < maxDepth {
			c, ok := r.store.commits[*next]
			if !ok {
				break
			}
			path = append(path, c)
			next = c.ParentCommitID
		}
	})
	if len(path) == 0 {
		return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
	}

	slices.Reverse(path)
	return path, nil
}

// UpdateName renames a commit
func (r *CommitRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) (*models.Commit, error) {
	s := r.store
	var updated models.Commit
	err := s.write(ctx, func() (func(), error) {
		prev, ok := s.commits[id]
		if !ok {
			return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
		}
		next := prev
		next.Name = name
		next.UpdatedAt = updatedAt
		s.commits[id] = next
		updated = next

		return func() { s.commits[id] = prev }, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
