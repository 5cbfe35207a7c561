package memory

import (
	"context"
	"fmt"
	"slices"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	repo "quill/internal/domain/repositories/versioning"

	"github.com/google/uuid"
)

// BlobRepository implements repo.BlobRepository on a Store
type BlobRepository struct {
	store *Store
}

// NewBlobRepository creates a blob repository backed by store
func NewBlobRepository(store *Store) repo.BlobRepository {
	return &BlobRepository{store: store}
}

// CreateIfNotExists returns the stored blob with the same (document, hash)
// or inserts blob
func (r *BlobRepository) CreateIfNotExists(ctx context.Context, blob *models.Blob) (*models.Blob, bool, error) {
	s := r.store
	var (
		result  models.Blob
		created bool
	)
	err := s.write(ctx, func() (func(), error) {
		if _, ok := s.documents[blob.DocumentID]; !ok {
			return nil, fmt.Errorf("document %s: %w", blob.DocumentID, domain.ErrDocumentNotFound)
		}

		index := s.blobIndex[blob.DocumentID]
		if id, ok := index[blob.Hash]; ok {
			result = s.blobs[id]
			return nil, nil
		}

		if index == nil {
			index = make(map[string]string)
			s.blobIndex[blob.DocumentID] = index
		}
		blob.ID = uuid.NewString()
		blob.CreatedAt = stamp(blob.CreatedAt)
		s.blobs[blob.ID] = *blob
		index[blob.Hash] = blob.ID
		result = *blob
		created = true

		id, docID, hash := blob.ID, blob.DocumentID, blob.Hash
		return func() {
			delete(s.blobs, id)
			delete(s.blobIndex[docID], hash)
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// GetByID retrieves a blob by ID
func (r *BlobRepository) GetByID(ctx context.Context, id string) (*models.Blob, error) {
	var (
		blob models.Blob
		ok   bool
	)
	r.store.read(func() { blob, ok = r.store.blobs[id] })
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, domain.ErrBlobMissing)
	}
	return &blob, nil
}

// GetByIDs retrieves all requested blobs that exist
func (r *BlobRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Blob, error) {
	blobs := make(map[string]models.Blob, len(ids))
	r.store.read(func() {
		for _, id := range ids {
			if blob, ok := r.store.blobs[id]; ok {
				blobs[id] = blob
			}
		}
	})
	return blobs, nil
}

// CountByDocument returns the number of blobs stored for a document
func (r *BlobRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	r.store.read(func() { count = len(r.store.blobIndex[documentID]) })
	return count, nil
}

// TreeRepository implements repo.TreeRepository on a Store
type TreeRepository struct {
	store *Store
}

// NewTreeRepository creates a tree repository backed by store
func NewTreeRepository(store *Store) repo.TreeRepository {
	return &TreeRepository{store: store}
}

// Create inserts a tree
func (r *TreeRepository) Create(ctx context.Context, tree *models.Tree) error {
	s := r.store
	return s.write(ctx, func() (func(), error) {
		if _, ok := s.documents[tree.DocumentID]; !ok {
			return nil, fmt.Errorf("document %s: %w", tree.DocumentID, domain.ErrDocumentNotFound)
		}

		tree.ID = uuid.NewString()
		tree.CreatedAt = stamp(tree.CreatedAt)
		stored := *tree
		stored.BlobIDs = slices.Clone(tree.BlobIDs)
		if stored.BlobIDs == nil {
			stored.BlobIDs = []string{}
		}
		s.trees[tree.ID] = stored

		id := tree.ID
		return func() { delete(s.trees, id) }, nil
	})
}

// GetByID retrieves a tree by ID
func (r *TreeRepository) GetByID(ctx context.Context, id string) (*models.Tree, error) {
	var (
		tree models.Tree
		ok   bool
	)
	r.store.read(func() { tree, ok = r.store.trees[id] })
	if !ok {
		return nil, fmt.Errorf("tree %s: %w", id, domain.ErrTreeNotFound)
	}
	tree.BlobIDs = slices.Clone(tree.BlobIDs)
	return &tree, nil
}
