package versioning

import (
	"context"
	"fmt"
	"slices"
	"time"

	models "quill/internal/domain/models/versioning"
	versioningRepo "quill/internal/domain/repositories/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
)

// treeStore implements the TreeStore interface
type treeStore struct {
	treeRepo versioningRepo.TreeRepository
}

// NewTreeStore creates a new tree store
func NewTreeStore(treeRepo versioningRepo.TreeRepository) versioningSvc.TreeStore {
	return &treeStore{treeRepo: treeRepo}
}

// Create stores a new snapshot. Identical blob lists still get separate trees.
func (s *treeStore) Create(ctx context.Context, documentID string, blobIDs []string) (*models.Tree, error) {
	ids := slices.Clone(blobIDs)
	if ids == nil {
		ids = []string{}
	}

	tree := &models.Tree{
		DocumentID: documentID,
		BlobIDs:    ids,
		CreatedAt:  time.Now(),
	}
	if err := s.treeRepo.Create(ctx, tree); err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}
	return tree, nil
}

// Get retrieves a tree
func (s *treeStore) Get(ctx context.Context, treeID string) (*models.Tree, error) {
	return s.treeRepo.GetByID(ctx, treeID)
}
