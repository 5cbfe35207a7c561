package versioning

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	repo "quill/internal/domain/repositories/versioning"
	"quill/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlobRepository implements the BlobRepository interface
type PostgresBlobRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewBlobRepository creates a new blob repository
func NewBlobRepository(config *postgres.RepositoryConfig) repo.BlobRepository {
	return &PostgresBlobRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateIfNotExists inserts blob unless (document_id, hash) is already taken.
// Concurrent writers of the same block both end up with the single stored row.
func (r *PostgresBlobRepository) CreateIfNotExists(ctx context.Context, blob *models.Blob) (*models.Blob, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, hash, content, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, hash) DO NOTHING
		RETURNING id, created_at
	`, r.tables.Blobs)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		blob.DocumentID,
		blob.Hash,
		blob.Content,
		blob.CreatedAt,
	).Scan(&blob.ID, &blob.CreatedAt)
	if err == nil {
		return blob, true, nil
	}
	if !postgres.IsPgNoRowsError(err) {
		if postgres.IsPgForeignKeyError(err) {
			return nil, false, fmt.Errorf("document %s: %w", blob.DocumentID, domain.ErrDocumentNotFound)
		}
		return nil, false, fmt.Errorf("create blob: %w", err)
	}

	// Conflict: the row exists, fetch it
	existing, err := r.getByHash(ctx, blob.DocumentID, blob.Hash)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresBlobRepository) getByHash(ctx context.Context, documentID, hash string) (*models.Blob, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, hash, content, created_at
		FROM %s
		WHERE document_id = $1 AND hash = $2
	`, r.tables.Blobs)

	var blob models.Blob
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID, hash).Scan(
		&blob.ID, &blob.DocumentID, &blob.Hash, &blob.Content, &blob.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get blob by hash: %w", err)
	}
	return &blob, nil
}

// GetByID retrieves a blob by ID
func (r *PostgresBlobRepository) GetByID(ctx context.Context, id string) (*models.Blob, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, hash, content, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Blobs)

	var blob models.Blob
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&blob.ID, &blob.DocumentID, &blob.Hash, &blob.Content, &blob.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("blob %s: %w", id, domain.ErrBlobMissing)
		}
		return nil, fmt.Errorf("get blob: %w", err)
	}

	return &blob, nil
}

// GetByIDs retrieves all requested blobs in one round trip
func (r *PostgresBlobRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Blob, error) {
	blobs := make(map[string]models.Blob, len(ids))
	if len(ids) == 0 {
		return blobs, nil
	}

	query := fmt.Sprintf(`
		SELECT id, document_id, hash, content, created_at
		FROM %s
		WHERE id = ANY($1::uuid[])
	`, r.tables.Blobs)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get blobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var blob models.Blob
		if err := rows.Scan(&blob.ID, &blob.DocumentID, &blob.Hash, &blob.Content, &blob.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		blobs[blob.ID] = blob
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blobs: %w", err)
	}

	return blobs, nil
}

// CountByDocument returns the number of blobs stored for a document
func (r *PostgresBlobRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE document_id = $1`, r.tables.Blobs)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count blobs: %w", err)
	}
	return count, nil
}
