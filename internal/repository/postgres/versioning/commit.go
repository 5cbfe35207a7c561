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

// PostgresCommitRepository implements the CommitRepository interface
type PostgresCommitRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCommitRepository creates a new commit repository
func NewCommitRepository(config *postgres.RepositoryConfig) repo.CommitRepository {
	return &PostgresCommitRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const commitColumns = `id, document_id, parent_commit_id, tree_id, name, commit_number, author_id, created_at, updated_at`

// scanner defines the interface for row scanning (implemented by both pgx.Row and pgx.Rows)
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCommit(row scanner) (*models.Commit, error) {
	var c models.Commit
	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.ParentCommitID,
		&c.TreeID,
		&c.Name,
		&c.CommitNumber,
		&c.AuthorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a commit
func (r *PostgresCommitRepository) Create(ctx context.Context, commit *models.Commit) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, parent_commit_id, tree_id, name, commit_number, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Commits)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		commit.DocumentID,
		commit.ParentCommitID,
		commit.TreeID,
		commit.Name,
		commit.CommitNumber,
		commit.AuthorID,
		commit.CreatedAt,
		commit.UpdatedAt,
	).Scan(&commit.ID, &commit.CreatedAt, &commit.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// commit_number already taken: another writer got in first
			return fmt.Errorf("commit number %d: %w", commit.CommitNumber, domain.ErrPointerConflict)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", commit.DocumentID, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("create commit: %w", err)
	}

	return nil
}

// GetByID retrieves a commit by ID
func (r *PostgresCommitRepository) GetByID(ctx context.Context, id string) (*models.Commit, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, commitColumns, r.tables.Commits)

	executor := postgres.GetExecutor(ctx, r.pool)
	commit, err := scanCommit(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
		}
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return commit, nil
}

// CountByDocument returns the number of commits of a document
func (r *PostgresCommitRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE document_id = $1`, r.tables.Commits)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count commits: %w", err)
	}
	return count, nil
}

// ListByDocument returns commits newest first using keyset pagination on commit_number
func (r *PostgresCommitRepository) ListByDocument(ctx context.Context, documentID string, beforeNumber *int, limit int) ([]models.Commit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		  AND ($2::int IS NULL OR commit_number < $2)
		ORDER BY commit_number DESC
		LIMIT $3
	`, commitColumns, r.tables.Commits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID, beforeNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	commits := []models.Commit{}
	for rows.Next() {
		commit, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, *commit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commits: %w", err)
	}

	return commits, nil
}

// GetPath retrieves the ancestry from the root to the given commit
func (r *PostgresCommitRepository) GetPath(ctx context.Context, id string, maxDepth int) ([]models.Commit, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE commit_path AS (
			SELECT %[1]s, 1 AS depth
			FROM %[2]s
			WHERE id = $1

			UNION ALL

			SELECT c.id, c.document_id, c.parent_commit_id, c.tree_id, c.name,
			       c.commit_number, c.author_id, c.created_at, c.updated_at, cp.depth + 1
			FROM %[2]s c
			INNER JOIN commit_path cp ON c.id = cp.parent_commit_id
			WHERE cp.depth < $2
		)
		SELECT %[1]s
		FROM commit_path
		ORDER BY depth DESC
	`, commitColumns, r.tables.Commits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id, maxDepth)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
		}
		return nil, fmt.Errorf("get commit path: %w", err)
	}
	defer rows.Close()

	var commits []models.Commit
	for rows.Next() {
		commit, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, *commit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commit path: %w", err)
	}

	if len(commits) == 0 {
		return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
	}

	return commits, nil
}

// UpdateName renames a commit
func (r *PostgresCommitRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) (*models.Commit, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, r.tables.Commits, commitColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	commit, err := scanCommit(executor.QueryRow(ctx, query, id, name, updatedAt))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("commit %s: %w", id, domain.ErrCommitNotFound)
		}
		return nil, fmt.Errorf("rename commit: %w", err)
	}

	return commit, nil
}
