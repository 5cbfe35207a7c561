package versioning

import (
	"context"
	"encoding/json"
	"fmt"

	models "quill/internal/domain/models/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
)

// snapshotReader rebuilds document JSON from a commit's tree
type snapshotReader struct {
	trees versioningSvc.TreeStore
	blobs versioningSvc.BlobStore
}

// read loads the commit's tree and every blob in order
func (r *snapshotReader) read(ctx context.Context, commit *models.Commit) (json.RawMessage, error) {
	tree, err := r.trees.Get(ctx, commit.TreeID)
	if err != nil {
		return nil, fmt.Errorf("load tree of commit %s: %w", commit.ID, err)
	}

	blobs, err := r.blobs.LoadAll(ctx, tree.BlobIDs)
	if err != nil {
		return nil, fmt.Errorf("load blobs of commit %s: %w", commit.ID, err)
	}

	blocks := make([]json.RawMessage, len(blobs))
	for i := range blobs {
		blocks[i] = json.RawMessage(blobs[i].Content)
	}

	out, err := encodeJSON(models.NewDocumentJSON(blocks))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}
