package repositories

import (
	"context"
	"time"

	"inkstone/internal/domain/models"
)

// VersionRepository persists immutable document snapshots. It does not
// serialize version-number assignment itself; the version service holds a
// per-document lock around Insert.
type VersionRepository interface {
	// Insert stores a snapshot with version number (current max)+1 computed
	// in a single statement, and returns the stored row without its content.
	Insert(ctx context.Context, id, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error)

	// List returns snapshot summaries for a document, newest version first.
	List(ctx context.Context, documentID string) ([]models.DocumentVersionSummary, error)

	// GetByID retrieves one snapshot with its content.
	GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error)

	// LatestCreatedAt returns the creation time of the most recent snapshot.
	// ok is false when the document has no snapshots.
	LatestCreatedAt(ctx context.Context, documentID string) (t time.Time, ok bool, err error)

	// Prune deletes all snapshots except the keep highest-numbered ones and
	// returns how many were removed.
	Prune(ctx context.Context, documentID string, keep int) (int64, error)
}
