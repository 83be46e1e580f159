package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateTagInput carries the fields accepted when creating a tag.
type CreateTagInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// Validate checks the input fields
func (i CreateTagInput) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&i.Color, validation.NilOrNotEmpty, validation.Match(hexColorPattern)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	return nil
}

// TagService manages tags and their links to documents.
type TagService struct {
	tags      repositories.TagRepository
	documents repositories.DocumentRepository
	logger    *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tags repositories.TagRepository,
	documents repositories.DocumentRepository,
	logger *slog.Logger,
) *TagService {
	return &TagService{
		tags:      tags,
		documents: documents,
		logger:    logger,
	}
}

// List returns the user's tags by name.
func (s *TagService) List(ctx context.Context, userID string) ([]models.Tag, error) {
	return s.tags.List(ctx, userID)
}

// Get returns one tag.
func (s *TagService) Get(ctx context.Context, userID, id string) (*models.Tag, error) {
	return s.tags.GetByID(ctx, userID, id)
}

// Create makes a new tag.
func (s *TagService) Create(ctx context.Context, userID string, input CreateTagInput) (*models.Tag, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate tag id: %w", err)
	}

	tag := &models.Tag{
		ID:     id.String(),
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Color:  input.Color,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Patch applies a partial tag update.
func (s *TagService) Patch(ctx context.Context, userID, id string, patch *models.TagPatch) (*models.Tag, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name must not be empty: %w", domain.ErrInvalidInput)
		}
		patch.Name = &trimmed
	}
	if patch.Color != nil && !hexColorPattern.MatchString(*patch.Color) {
		return nil, fmt.Errorf("color must be a hex value like #aabbcc: %w", domain.ErrInvalidInput)
	}
	return s.tags.Patch(ctx, userID, id, patch)
}

// Delete removes a tag; document links cascade away with it.
func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.tags.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Attach links a tag to a document. Both must belong to the user; linking an
// already-linked pair is a no-op.
func (s *TagService) Attach(ctx context.Context, userID, documentID, tagID string) error {
	if _, err := s.documents.GetByID(ctx, userID, documentID); err != nil {
		return err
	}
	if _, err := s.tags.GetByID(ctx, userID, tagID); err != nil {
		return err
	}
	return s.tags.AddToDocument(ctx, documentID, tagID)
}

// Detach unlinks a tag from a document.
func (s *TagService) Detach(ctx context.Context, userID, documentID, tagID string) error {
	if _, err := s.documents.GetByID(ctx, userID, documentID); err != nil {
		return err
	}
	removed, err := s.tags.RemoveFromDocument(ctx, documentID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("tag %s on document %s: %w", tagID, documentID, domain.ErrNotFound)
	}
	return nil
}

// ListForDocument returns the tags attached to one of the user's documents.
func (s *TagService) ListForDocument(ctx context.Context, userID, documentID string) ([]models.Tag, error) {
	if _, err := s.documents.GetByID(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.tags.ListForDocument(ctx, documentID)
}
