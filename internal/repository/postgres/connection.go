package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkstone/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Documents    string
	Folders      string
	Versions     string
	SearchTerms  string
	Tags         string
	DocumentTags string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:    fmt.Sprintf("%sdocuments", prefix),
		Folders:      fmt.Sprintf("%sfolders", prefix),
		Versions:     fmt.Sprintf("%sdocument_versions", prefix),
		SearchTerms:  fmt.Sprintf("%sdocument_search_terms", prefix),
		Tags:         fmt.Sprintf("%stags", prefix),
		DocumentTags: fmt.Sprintf("%sdocument_tags", prefix),
	}
}

// CreateConnectionPool creates a bounded pgx connection pool. Callers queue
// on the pool when every connection is busy rather than failing.
//
// Note on dynamic table names: fmt.Sprintf interpolation of the configured
// prefix happens before the SQL reaches the database, so each environment
// gets its own prepared statements ("SELECT FROM dev_documents" vs
// "SELECT FROM prod_documents" are separate statements).
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool. This enables repositories to
// automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
