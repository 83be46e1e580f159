package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates all tables and indexes if they do not exist yet.
// Timestamps use millisecond precision. Folder references on documents and
// folders carry no ON DELETE action on purpose: the folder service detaches
// dependents explicitly before deleting, so the behavior is visible in
// application code rather than buried in the schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				user_id TEXT NOT NULL,
				parent_id UUID,
				name TEXT NOT NULL,
				slug TEXT NOT NULL,
				sort_order BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ(3) NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ(3) NOT NULL DEFAULT now()
			)`, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				row_id BIGINT GENERATED ALWAYS AS IDENTITY UNIQUE,
				id UUID PRIMARY KEY,
				user_id TEXT NOT NULL,
				folder_id UUID,
				title TEXT NOT NULL,
				slug TEXT NOT NULL,
				file_path TEXT NOT NULL UNIQUE,
				word_count BIGINT NOT NULL DEFAULT 0,
				char_count BIGINT NOT NULL DEFAULT 0,
				excerpt TEXT,
				is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ(3) NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ(3) NOT NULL DEFAULT now()
			)`, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				version_number BIGINT NOT NULL,
				content TEXT NOT NULL,
				word_count BIGINT NOT NULL,
				char_count BIGINT NOT NULL,
				created_at TIMESTAMPTZ(3) NOT NULL DEFAULT now(),
				UNIQUE (document_id, version_number)
			)`, tables.Versions, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_row_id BIGINT NOT NULL,
				term TEXT NOT NULL,
				title_hits INT NOT NULL DEFAULT 0,
				content_hits INT NOT NULL DEFAULT 0,
				PRIMARY KEY (document_row_id, term)
			)`, tables.SearchTerms),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_term_idx ON %s (term)`,
			tables.SearchTerms, tables.SearchTerms),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				color TEXT
			)`, tables.Tags),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				tag_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				PRIMARY KEY (document_id, tag_id)
			)`, tables.DocumentTags, tables.Documents, tables.Tags),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
