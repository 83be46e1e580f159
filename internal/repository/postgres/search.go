package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
)

const searchResultLimit = 50

// PostgresSearchIndex keeps an inverted index of term occurrence counts in a
// postings table keyed by the documents table's row_id. The table stores no
// document text, so stale postings can only be removed by re-tokenizing the
// exact title and content that produced them.
type PostgresSearchIndex struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSearchIndex creates a new search index repository
func NewSearchIndex(config *RepositoryConfig) repositories.SearchIndex {
	return &PostgresSearchIndex{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// posting counts a term's occurrences in the title and content fields.
type posting struct {
	titleHits   int32
	contentHits int32
}

// Tokenize lowercases the text and splits it on anything that is not a
// letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func buildPostings(title, content string) map[string]posting {
	postings := make(map[string]posting)
	for _, term := range Tokenize(title) {
		p := postings[term]
		p.titleHits++
		postings[term] = p
	}
	for _, term := range Tokenize(content) {
		p := postings[term]
		p.contentHits++
		postings[term] = p
	}
	return postings
}

// Index replaces the postings for one document. Errors are logged and
// swallowed: a stale index entry is preferable to failing the write that
// triggered the reindex.
func (r *PostgresSearchIndex) Index(ctx context.Context, documentID, title, content string, priorTitle, priorContent *string) {
	rowID, ok, err := r.resolveRowID(ctx, documentID)
	if err != nil {
		r.logger.Warn("search index update failed", "document_id", documentID, "error", err)
		return
	}
	if !ok {
		return
	}

	if priorTitle != nil && priorContent != nil {
		if err := r.retract(ctx, rowID, *priorTitle, *priorContent); err != nil {
			r.logger.Warn("search index retraction failed", "document_id", documentID, "error", err)
			return
		}
	}

	if err := r.insert(ctx, rowID, title, content); err != nil {
		r.logger.Warn("search index insert failed", "document_id", documentID, "error", err)
	}
}

// Remove retracts a document's postings ahead of its metadata row being
// deleted. Errors are logged and swallowed.
func (r *PostgresSearchIndex) Remove(ctx context.Context, documentID, priorTitle, priorContent string) {
	rowID, ok, err := r.resolveRowID(ctx, documentID)
	if err != nil {
		r.logger.Warn("search index removal failed", "document_id", documentID, "error", err)
		return
	}
	if !ok {
		return
	}
	if err := r.retract(ctx, rowID, priorTitle, priorContent); err != nil {
		r.logger.Warn("search index removal failed", "document_id", documentID, "error", err)
	}
}

func (r *PostgresSearchIndex) resolveRowID(ctx context.Context, documentID string) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT row_id FROM %s WHERE id = $1`, r.tables.Documents)

	var rowID int64
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID).Scan(&rowID)
	if err != nil {
		if IsPgNoRowsError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve row id: %w", err)
	}
	return rowID, true, nil
}

// retract decrements the counts contributed by the prior title and content,
// then drops postings whose counts reached zero.
func (r *PostgresSearchIndex) retract(ctx context.Context, rowID int64, priorTitle, priorContent string) error {
	postings := buildPostings(priorTitle, priorContent)
	if len(postings) == 0 {
		return nil
	}

	decrement := fmt.Sprintf(`
		UPDATE %s
		SET title_hits = title_hits - $3, content_hits = content_hits - $4
		WHERE document_row_id = $1 AND term = $2
	`, r.tables.SearchTerms)
	sweep := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_row_id = $1 AND title_hits <= 0 AND content_hits <= 0
	`, r.tables.SearchTerms)

	batch := &pgx.Batch{}
	for _, term := range sortedTerms(postings) {
		p := postings[term]
		batch.Queue(decrement, rowID, term, p.titleHits, p.contentHits)
	}
	batch.Queue(sweep, rowID)

	executor := GetExecutor(ctx, r.pool)
	if err := executor.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("retract postings: %w", err)
	}
	return nil
}

func (r *PostgresSearchIndex) insert(ctx context.Context, rowID int64, title, content string) error {
	postings := buildPostings(title, content)
	if len(postings) == 0 {
		return nil
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (document_row_id, term, title_hits, content_hits)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_row_id, term) DO UPDATE
		SET title_hits = %s.title_hits + EXCLUDED.title_hits,
			content_hits = %s.content_hits + EXCLUDED.content_hits
	`, r.tables.SearchTerms, r.tables.SearchTerms, r.tables.SearchTerms)

	batch := &pgx.Batch{}
	for _, term := range sortedTerms(postings) {
		p := postings[term]
		batch.Queue(upsert, rowID, term, p.titleHits, p.contentHits)
	}

	executor := GetExecutor(ctx, r.pool)
	if err := executor.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert postings: %w", err)
	}
	return nil
}

// sortedTerms gives the batch a stable statement order.
func sortedTerms(postings map[string]posting) []string {
	terms := make([]string, 0, len(postings))
	for term := range postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Search matches documents containing every query term, scored by weighted
// occurrence counts with title hits counting double, best score first.
func (r *PostgresSearchIndex) Search(ctx context.Context, userID, queryText string) ([]models.Document, error) {
	terms := Tokenize(queryText)
	if len(terms) == 0 {
		return nil, fmt.Errorf("search query has no indexable terms: %w", domain.ErrInvalidInput)
	}

	unique := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}

	query := fmt.Sprintf(`
		SELECT %s, SUM(2.0 * s.title_hits + s.content_hits) AS score
		FROM %s s
		JOIN %s d ON d.row_id = s.document_row_id
		WHERE d.user_id = $1 AND s.term = ANY($2)
		GROUP BY d.id
		HAVING COUNT(DISTINCT s.term) = $3
		ORDER BY score DESC
		LIMIT %d
	`, prefixColumns("d", documentColumns), r.tables.SearchTerms, r.tables.Documents, searchResultLimit)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, unique, len(unique))
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		var score float64
		err := rows.Scan(
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
			&score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return docs, nil
}
