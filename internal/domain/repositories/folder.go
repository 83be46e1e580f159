package repositories

import (
	"context"

	"inkstone/internal/domain/models"
)

// FolderRepository defines metadata-store access for folders, user-scoped
// like DocumentRepository.
type FolderRepository interface {
	// List returns all folders for the user ordered by sort_order, then name.
	List(ctx context.Context, userID string) ([]models.Folder, error)

	// GetByID retrieves a folder by ID. Returns domain.ErrNotFound when the
	// row is missing or owned by another user.
	GetByID(ctx context.Context, userID, id string) (*models.Folder, error)

	// Create inserts a new folder row and fills in store-assigned defaults.
	Create(ctx context.Context, folder *models.Folder) error

	// Patch applies only the fields set in the patch and refreshes
	// updated_at. Returns the updated row.
	Patch(ctx context.Context, userID, id string, patch *models.FolderPatch) (*models.Folder, error)

	// Delete removes the row. Returns true iff a row existed and was removed.
	// Callers are responsible for detaching dependents first.
	Delete(ctx context.Context, userID, id string) (bool, error)

	// DetachParent clears the parent reference on every direct child folder,
	// promoting them to root level.
	DetachParent(ctx context.Context, userID, parentID string) error
}
