package repositories

import (
	"context"

	"inkstone/internal/domain/models"
)

// TagRepository defines metadata-store access for tags and the
// document<->tag link table.
type TagRepository interface {
	List(ctx context.Context, userID string) ([]models.Tag, error)
	GetByID(ctx context.Context, userID, id string) (*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Patch(ctx context.Context, userID, id string, patch *models.TagPatch) (*models.Tag, error)
	Delete(ctx context.Context, userID, id string) (bool, error)

	// AddToDocument links a tag to a document; linking twice is a no-op.
	AddToDocument(ctx context.Context, documentID, tagID string) error

	// RemoveFromDocument unlinks a tag. Returns true iff a link existed.
	RemoveFromDocument(ctx context.Context, documentID, tagID string) (bool, error)

	// ListForDocument returns the tags attached to a document, by name.
	ListForDocument(ctx context.Context, documentID string) ([]models.Tag, error)
}
