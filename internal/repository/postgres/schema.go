package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// SchemaSQL returns the versioning DDL for the given table names
func SchemaSQL(tables *TableNames) string {
	return strings.NewReplacer(
		"{{documents}}", tables.Documents,
		"{{commits}}", tables.Commits,
		"{{trees}}", tables.Trees,
		"{{blobs}}", tables.Blobs,
	).Replace(schemaSQL)
}

// EnsureSchema creates the versioning tables if they do not exist.
// Statements are idempotent, so this is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, SchemaSQL(tables)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
