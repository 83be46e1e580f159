package repositories

import (
	"context"

	"inkstone/internal/domain/models"
)

// SearchIndex is an external-content inverted index: it stores tokens keyed
// by the document's storage row identifier, never the text itself. Removing
// stale postings therefore requires the exact title and content that were
// indexed before.
type SearchIndex interface {
	// Index replaces the postings for one document. When priorTitle and
	// priorContent are both non-nil, the postings derived from that exact
	// pair are retracted before the new pair is inserted. A document id with
	// no metadata row is a no-op. Indexing failures are swallowed by the
	// implementation; callers never see them.
	Index(ctx context.Context, documentID, title, content string, priorTitle, priorContent *string)

	// Remove retracts the postings derived from the given title and content.
	// It must run while the metadata row still exists, since the index
	// resolves the storage row identifier through it. Failures are swallowed.
	Remove(ctx context.Context, documentID, priorTitle, priorContent string)

	// Search runs a ranked query over the user's documents, best match
	// first, at most 50 results. The query must contain at least one
	// indexable term.
	Search(ctx context.Context, userID, query string) ([]models.Document, error)
}
