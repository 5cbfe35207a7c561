package versioning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	versioningRepo "quill/internal/domain/repositories/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/metrics"
)

// blobStore implements the BlobStore interface
type blobStore struct {
	blobRepo versioningRepo.BlobRepository
	hasher   versioningSvc.Hasher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewBlobStore creates a new blob store
func NewBlobStore(
	blobRepo versioningRepo.BlobRepository,
	hasher versioningSvc.Hasher,
	m *metrics.Metrics,
	logger *slog.Logger,
) versioningSvc.BlobStore {
	return &blobStore{
		blobRepo: blobRepo,
		hasher:   hasher,
		metrics:  m,
		logger:   logger,
	}
}

// GetOrCreate resolves block to a blob of documentID, reusing an existing blob
// with the same hash
func (s *blobStore) GetOrCreate(ctx context.Context, documentID string, block json.RawMessage) (string, error) {
	canonical, err := canonicalize(block)
	if err != nil {
		return "", err
	}
	content := string(canonical)
	blob := &models.Blob{
		DocumentID: documentID,
		Hash:       s.hasher.Digest(content),
		Content:    content,
		CreatedAt:  time.Now(),
	}

	stored, created, err := s.blobRepo.CreateIfNotExists(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	s.metrics.RecordBlobLookup(!created)

	return stored.ID, nil
}

// Load retrieves a single blob
func (s *blobStore) Load(ctx context.Context, blobID string) (*models.Blob, error) {
	blob, err := s.blobRepo.GetByID(ctx, blobID)
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// LoadAll retrieves blobs in the order of blobIDs. A referenced blob that is
// gone means the store is corrupt, so it is never skipped.
func (s *blobStore) LoadAll(ctx context.Context, blobIDs []string) ([]models.Blob, error) {
	found, err := s.blobRepo.GetByIDs(ctx, blobIDs)
	if err != nil {
		return nil, fmt.Errorf("load blobs: %w", err)
	}

	blobs := make([]models.Blob, 0, len(blobIDs))
	for i, id := range blobIDs {
		blob, ok := found[id]
		if !ok {
			s.logger.Error("storage integrity violation: blob missing",
				"blob_id", id,
				"position", i,
			)
			return nil, fmt.Errorf("blob %s: %w", id, domain.ErrBlobMissing)
		}
		blobs = append(blobs, blob)
	}

	return blobs, nil
}
