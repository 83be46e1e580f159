package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Insert appends a snapshot with the next version number for the document.
// The number is assigned in the same statement that reads the current max,
// and the unique constraint on (document_id, version_number) rejects any
// concurrent writer that saw the same max. Callers serialize per document,
// so a constraint violation here indicates a bug, not load.
func (r *PostgresVersionRepository) Insert(ctx context.Context, id, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version_number, content, word_count, char_count)
		SELECT $1, $2, COALESCE(MAX(version_number), 0) + 1, $3, $4, $5
		FROM %s
		WHERE document_id = $2
		RETURNING id, document_id, version_number, word_count, char_count, created_at
	`, r.tables.Versions, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	var summary models.DocumentVersionSummary
	err := executor.QueryRow(ctx, query, id, documentID, content, wordCount, charCount).Scan(
		&summary.ID,
		&summary.DocumentID,
		&summary.VersionNumber,
		&summary.WordCount,
		&summary.CharCount,
		&summary.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return nil, fmt.Errorf("version number collision for document %s: %w", documentID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return &summary, nil
}

// List returns version summaries for a document, newest first
func (r *PostgresVersionRepository) List(ctx context.Context, documentID string) ([]models.DocumentVersionSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, word_count, char_count, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var summaries []models.DocumentVersionSummary
	for rows.Next() {
		var s models.DocumentVersionSummary
		err := rows.Scan(&s.ID, &s.DocumentID, &s.VersionNumber, &s.WordCount, &s.CharCount, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return summaries, nil
}

// GetByID retrieves a single version including its content
func (r *PostgresVersionRepository) GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, content, word_count, char_count, created_at
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	var v models.DocumentVersion
	err := executor.QueryRow(ctx, query, versionID, documentID).Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Content,
		&v.WordCount,
		&v.CharCount,
		&v.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &v, nil
}

// LatestCreatedAt returns the creation time of the newest snapshot.
// The second return is false when the document has no snapshots yet.
func (r *PostgresVersionRepository) LatestCreatedAt(ctx context.Context, documentID string) (time.Time, bool, error) {
	query := fmt.Sprintf(`
		SELECT created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
		LIMIT 1
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	var createdAt time.Time
	err := executor.QueryRow(ctx, query, documentID).Scan(&createdAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("latest version time: %w", err)
	}
	return createdAt, true, nil
}

// Prune deletes all but the `keep` highest-numbered snapshots for a document
func (r *PostgresVersionRepository) Prune(ctx context.Context, documentID string, keep int) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1
		AND version_number NOT IN (
			SELECT version_number FROM %s
			WHERE document_id = $1
			ORDER BY version_number DESC
			LIMIT $2
		)
	`, r.tables.Versions, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, documentID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune versions: %w", err)
	}
	return result.RowsAffected(), nil
}
