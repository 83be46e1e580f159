package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
)

// documentColumns is the select list shared by every document query.
const documentColumns = `id, user_id, folder_id, title, slug, file_path,
	word_count, char_count, excerpt, is_pinned, is_archived, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FolderID,
		&doc.Title,
		&doc.Slug,
		&doc.FilePath,
		&doc.WordCount,
		&doc.CharCount,
		&doc.Excerpt,
		&doc.IsPinned,
		&doc.IsArchived,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// List returns all documents for the user, pinned first, newest update first
func (r *PostgresDocumentRepository) List(ctx context.Context, userID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY is_pinned DESC, updated_at DESC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

// ListByTag returns the user's documents carrying the given tag
func (r *PostgresDocumentRepository) ListByTag(ctx context.Context, userID, tagID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s d
		JOIN %s dt ON dt.document_id = d.id
		WHERE d.user_id = $1 AND dt.tag_id = $2
		ORDER BY d.is_pinned DESC, d.updated_at DESC
	`, prefixColumns("d", documentColumns), r.tables.Documents, r.tables.DocumentTags)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, tagID)
	if err != nil {
		return nil, fmt.Errorf("list documents by tag: %w", err)
	}
	return collectDocuments(rows)
}

// GetByID retrieves a document by ID, scoped to the owning user
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, userID, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Create inserts a new document row and backfills store-assigned defaults
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, folder_id, title, slug, file_path, word_count, char_count, excerpt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING is_pinned, is_archived, created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.UserID,
		doc.FolderID,
		doc.Title,
		doc.Slug,
		doc.FilePath,
		doc.WordCount,
		doc.CharCount,
		doc.Excerpt,
	).Scan(
		&doc.IsPinned,
		&doc.IsArchived,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("document path '%s': %w", doc.FilePath, domain.ErrConflict)
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Patch applies only the fields set in the patch and refreshes updated_at
func (r *PostgresDocumentRepository) Patch(ctx context.Context, userID, id string, patch *models.DocumentPatch) (*models.Document, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Slug != nil {
		addSet("slug", *patch.Slug)
	}
	if patch.FolderID.Present {
		// Present with nil value moves the document to root.
		addSet("folder_id", patch.FolderID.Value)
	}
	if patch.IsPinned != nil {
		addSet("is_pinned", *patch.IsPinned)
	}
	if patch.IsArchived != nil {
		addSet("is_archived", *patch.IsArchived)
	}

	if len(args) == 0 {
		// Nothing to change; hand back the current row.
		return r.GetByID(ctx, userID, id)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, r.tables.Documents, strings.Join(setClauses, ", "), len(args)-1, len(args), documentColumns)

	executor := GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("patch document: %w", err)
	}
	return doc, nil
}

// UpdateContentStats refreshes the derived metadata after a content write
func (r *PostgresDocumentRepository) UpdateContentStats(ctx context.Context, userID, id string, wordCount, charCount int64, excerpt *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET word_count = $1, char_count = $2, excerpt = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, wordCount, charCount, excerpt, id, userID)
	if err != nil {
		return fmt.Errorf("update content stats: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the row; true iff a row existed
func (r *PostgresDocumentRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// RowID resolves the internal storage row identifier for a document id
func (r *PostgresDocumentRepository) RowID(ctx context.Context, id string) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT row_id FROM %s WHERE id = $1`, r.tables.Documents)

	var rowID int64
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&rowID)
	if err != nil {
		if IsPgNoRowsError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve row id: %w", err)
	}
	return rowID, true, nil
}

// ListDefaultTitles returns titles starting with the default-title prefix in
// the given folder (nil = root)
func (r *PostgresDocumentRepository) ListDefaultTitles(ctx context.Context, userID string, folderID *string, prefix string) ([]string, error) {
	var query string
	args := []interface{}{userID, prefix + "%"}

	if folderID != nil {
		query = fmt.Sprintf(`
			SELECT title FROM %s
			WHERE user_id = $1 AND title LIKE $2 AND folder_id = $3
		`, r.tables.Documents)
		args = append(args, *folderID)
	} else {
		query = fmt.Sprintf(`
			SELECT title FROM %s
			WHERE user_id = $1 AND title LIKE $2 AND folder_id IS NULL
		`, r.tables.Documents)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list default titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return titles, nil
}

// DetachFolder clears the folder reference on every document directly in the
// folder
func (r *PostgresDocumentRepository) DetachFolder(ctx context.Context, userID, folderID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, updated_at = now()
		WHERE user_id = $1 AND folder_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, folderID); err != nil {
		return fmt.Errorf("detach documents from folder: %w", err)
	}
	return nil
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
