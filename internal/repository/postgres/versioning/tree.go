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

// PostgresTreeRepository implements the TreeRepository interface
type PostgresTreeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTreeRepository creates a new tree repository
func NewTreeRepository(config *postgres.RepositoryConfig) repo.TreeRepository {
	return &PostgresTreeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a tree. Trees are append-only.
func (r *PostgresTreeRepository) Create(ctx context.Context, tree *models.Tree) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, blob_ids, created_at)
		VALUES ($1, $2::uuid[], $3)
		RETURNING id, created_at
	`, r.tables.Trees)

	blobIDs := tree.BlobIDs
	if blobIDs == nil {
		blobIDs = []string{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, tree.DocumentID, blobIDs, tree.CreatedAt).Scan(&tree.ID, &tree.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", tree.DocumentID, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("create tree: %w", err)
	}

	return nil
}

// GetByID retrieves a tree by ID
func (r *PostgresTreeRepository) GetByID(ctx context.Context, id string) (*models.Tree, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, blob_ids::text[], created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Trees)

	var tree models.Tree
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&tree.ID, &tree.DocumentID, &tree.BlobIDs, &tree.CreatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("tree %s: %w", id, domain.ErrTreeNotFound)
		}
		return nil, fmt.Errorf("get tree: %w", err)
	}

	if tree.BlobIDs == nil {
		tree.BlobIDs = []string{}
	}

	return &tree, nil
}
