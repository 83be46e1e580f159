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

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *RepositoryConfig) repositories.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func collectTags(rows pgx.Rows) ([]models.Tag, error) {
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// List returns all tags for the user ordered by name
func (r *PostgresTagRepository) List(ctx context.Context, userID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, color
		FROM %s
		WHERE user_id = $1
		ORDER BY name ASC
	`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return collectTags(rows)
}

// GetByID retrieves a tag by ID, scoped to the owning user
func (r *PostgresTagRepository) GetByID(ctx context.Context, userID, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, color
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	var tag models.Tag
	err := executor.QueryRow(ctx, query, id, userID).Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// Create inserts a new tag row
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
	`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.Color); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// Patch applies only the fields set in the patch
func (r *PostgresTagRepository) Patch(ctx context.Context, userID, id string, patch *models.TagPatch) (*models.Tag, error) {
	var setClauses []string
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Color != nil {
		addSet("color", *patch.Color)
	}

	if len(args) == 0 {
		return r.GetByID(ctx, userID, id)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, name, color
	`, r.tables.Tags, strings.Join(setClauses, ", "), len(args)-1, len(args))

	executor := GetExecutor(ctx, r.pool)
	var tag models.Tag
	err := executor.QueryRow(ctx, query, args...).Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("patch tag: %w", err)
	}
	return &tag, nil
}

// Delete removes the row; links to documents cascade
func (r *PostgresTagRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// AddToDocument links a tag to a document, ignoring duplicate links
func (r *PostgresTagRepository) AddToDocument(ctx context.Context, documentID, tagID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (document_id, tag_id) DO NOTHING
	`, r.tables.DocumentTags)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, tagID); err != nil {
		return fmt.Errorf("add tag to document: %w", err)
	}
	return nil
}

// RemoveFromDocument unlinks a tag from a document
func (r *PostgresTagRepository) RemoveFromDocument(ctx context.Context, documentID, tagID string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE document_id = $1 AND tag_id = $2
	`, r.tables.DocumentTags)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, documentID, tagID)
	if err != nil {
		return false, fmt.Errorf("remove tag from document: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListForDocument returns the tags attached to a document ordered by name
func (r *PostgresTagRepository) ListForDocument(ctx context.Context, documentID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.user_id, t.name, t.color
		FROM %s t
		JOIN %s dt ON dt.tag_id = t.id
		WHERE dt.document_id = $1
		ORDER BY t.name ASC
	`, r.tables.Tags, r.tables.DocumentTags)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list tags for document: %w", err)
	}
	return collectTags(rows)
}
