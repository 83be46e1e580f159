package repositories

import (
	"context"

	"inkstone/internal/domain/models"
)

// DocumentRepository defines metadata-store access for documents. Every
// operation is scoped to the owning user; a row owned by someone else
// behaves exactly like a missing row.
type DocumentRepository interface {
	// List returns all documents for the user, pinned first, then most
	// recently updated first.
	List(ctx context.Context, userID string) ([]models.Document, error)

	// ListByTag returns the user's documents carrying the given tag, in the
	// same order as List.
	ListByTag(ctx context.Context, userID, tagID string) ([]models.Document, error)

	// GetByID retrieves a document by ID. Returns domain.ErrNotFound when the
	// row is missing or owned by another user.
	GetByID(ctx context.Context, userID, id string) (*models.Document, error)

	// Create inserts a new document row and fills in store-assigned defaults
	// (counts, timestamps) on the passed struct.
	Create(ctx context.Context, doc *models.Document) error

	// Patch applies only the fields set in the patch and refreshes
	// updated_at. Returns the updated row.
	Patch(ctx context.Context, userID, id string, patch *models.DocumentPatch) (*models.Document, error)

	// UpdateContentStats refreshes the derived metadata after a content write.
	UpdateContentStats(ctx context.Context, userID, id string, wordCount, charCount int64, excerpt *string) error

	// Delete removes the row. Returns true iff a row existed and was removed.
	Delete(ctx context.Context, userID, id string) (bool, error)

	// RowID resolves the internal storage row identifier for a document id,
	// unscoped. ok is false when no such document exists.
	RowID(ctx context.Context, id string) (rowID int64, ok bool, err error)

	// ListDefaultTitles returns titles starting with the default-title prefix
	// in the given folder (nil = root), used to pick the next free default.
	ListDefaultTitles(ctx context.Context, userID string, folderID *string, prefix string) ([]string, error)

	// DetachFolder clears the folder reference on every document directly in
	// the folder.
	DetachFolder(ctx context.Context, userID, folderID string) error
}
