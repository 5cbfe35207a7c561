package versioning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	repo "quill/internal/domain/repositories/versioning"
	"quill/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) repo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, owner_id, current_commit_id, root_commit_id, created_at, updated_at`

// Create creates a new document without commit pointers
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.OwnerID,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)
	return r.getOne(ctx, query, id)
}

// GetForUpdate retrieves a document and holds a row lock on it.
// Only meaningful inside a transaction.
func (r *PostgresDocumentRepository) GetForUpdate(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, documentColumns, r.tables.Documents)
	return r.getOne(ctx, query, id)
}

func (r *PostgresDocumentRepository) getOne(ctx context.Context, query, id string) (*models.Document, error) {
	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.OwnerID,
		&doc.CurrentCommitID,
		&doc.RootCommitID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// InitializePointers points a freshly created document at its root commit
func (r *PostgresDocumentRepository) InitializePointers(ctx context.Context, id, rootCommitID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_commit_id = $2, root_commit_id = $2, updated_at = $3
		WHERE id = $1
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, rootCommitID, time.Now())
	if err != nil {
		return fmt.Errorf("initialize document pointers: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}

	return nil
}

// AdvanceCurrentCommit moves the current pointer only if it still equals
// expectedCurrentID
func (r *PostgresDocumentRepository) AdvanceCurrentCommit(ctx context.Context, id, expectedCurrentID, newCommitID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_commit_id = $3, updated_at = $4
		WHERE id = $1 AND current_commit_id = $2
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, expectedCurrentID, newCommitID, time.Now())
	if err != nil {
		return fmt.Errorf("advance current commit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrPointerConflict)
	}

	return nil
}

// SetCurrentCommit writes doc.CurrentCommitID and refreshes doc.UpdatedAt
func (r *PostgresDocumentRepository) SetCurrentCommit(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_commit_id = $2, updated_at = $3
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, doc.ID, doc.CurrentCommitID, time.Now()).Scan(&doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("set current commit: %w", err)
	}

	return nil
}

// Delete removes a document. Commits, trees and blobs go with it via ON DELETE CASCADE.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}

	return nil
}
