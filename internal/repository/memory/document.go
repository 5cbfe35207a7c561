package memory

import (
	"context"
	"fmt"
	"time"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	repo "quill/internal/domain/repositories/versioning"

	"github.com/google/uuid"
)

// DocumentRepository implements repo.DocumentRepository on a Store
type DocumentRepository struct {
	store *Store
}

// NewDocumentRepository creates a document repository backed by store
func NewDocumentRepository(store *Store) repo.DocumentRepository {
	return &DocumentRepository{store: store}
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// Create inserts a document without commit pointers
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	s := r.store
	return s.write(ctx, func() (func(), error) {
		doc.ID = uuid.NewString()
		doc.CreatedAt = stamp(doc.CreatedAt)
		doc.UpdatedAt = stamp(doc.UpdatedAt)
		doc.CurrentCommitID = nil
		doc.RootCommitID = nil
		s.documents[doc.ID] = *doc

		id := doc.ID
		return func() { delete(s.documents, id) }, nil
	})
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var (
		doc models.Document
		ok  bool
	)
	r.store.read(func() { doc, ok = r.store.documents[id] })
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return &doc, nil
}

// GetForUpdate retrieves a document. Transactions already hold the store's
// writer lock, so no row lock is needed.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, id string) (*models.Document, error) {
	return r.GetByID(ctx, id)
}

// update applies fn to a stored document and records the previous value
func (r *DocumentRepository) update(ctx context.Context, id string, fn func(doc *models.Document) error) (*models.Document, error) {
	s := r.store
	var updated models.Document
	err := s.write(ctx, func() (func(), error) {
		prev, ok := s.documents[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		next := prev
		if err := fn(&next); err != nil {
			return nil, err
		}
		next.UpdatedAt = time.Now()
		s.documents[id] = next
		updated = next

		return func() { s.documents[id] = prev }, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// InitializePointers points a freshly created document at its root commit
func (r *DocumentRepository) InitializePointers(ctx context.Context, id, rootCommitID string) error {
	_, err := r.update(ctx, id, func(doc *models.Document) error {
		doc.CurrentCommitID = &rootCommitID
		doc.RootCommitID = &rootCommitID
		return nil
	})
	return err
}

// AdvanceCurrentCommit moves the current pointer only if it still equals expectedCurrentID
func (r *DocumentRepository) AdvanceCurrentCommit(ctx context.Context, id, expectedCurrentID, newCommitID string) error {
	_, err := r.update(ctx, id, func(doc *models.Document) error {
		if doc.CurrentCommitID == nil || *doc.CurrentCommitID != expectedCurrentID {
			return fmt.Errorf("document %s: %w", id, domain.ErrPointerConflict)
		}
		doc.CurrentCommitID = &newCommitID
		return nil
	})
	return err
}

// SetCurrentCommit writes doc.CurrentCommitID and refreshes doc.UpdatedAt
func (r *DocumentRepository) SetCurrentCommit(ctx context.Context, doc *models.Document) error {
	updated, err := r.update(ctx, doc.ID, func(stored *models.Document) error {
		stored.CurrentCommitID = doc.CurrentCommitID
		return nil
	})
	if err != nil {
		return err
	}
	doc.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete removes a document with its commits, trees and blobs
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	return s.write(ctx, func() (func(), error) {
		doc, ok := s.documents[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}

		commitIDs := s.commitsByDoc[id]
		commits := make([]models.Commit, 0, len(commitIDs))
		for _, cid := range commitIDs {
			commits = append(commits, s.commits[cid])
			delete(s.commits, cid)
		}

		var trees []models.Tree
		for tid, tree := range s.trees {
			if tree.DocumentID == id {
				trees = append(trees, tree)
				delete(s.trees, tid)
			}
		}

		index := s.blobIndex[id]
		blobs := make([]models.Blob, 0, len(index))
		for _, bid := range index {
			blobs = append(blobs, s.blobs[bid])
			delete(s.blobs, bid)
		}

		delete(s.documents, id)
		delete(s.commitsByDoc, id)
		delete(s.blobIndex, id)

		return func() {
			s.documents[id] = doc
			for _, c := range commits {
				s.commits[c.ID] = c
			}
			if commitIDs != nil {
				s.commitsByDoc[id] = commitIDs
			}
			for _, t := range trees {
				s.trees[t.ID] = t
			}
			for _, b := range blobs {
				s.blobs[b.ID] = b
			}
			if index != nil {
				s.blobIndex[id] = index
			}
		}, nil
	})
}
