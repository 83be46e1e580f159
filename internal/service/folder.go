package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
	"inkstone/internal/utils"
)

// CreateFolderInput carries the fields accepted when creating a folder.
type CreateFolderInput struct {
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	SortOrder int64   `json:"sort_order"`
}

// Validate checks the input fields
func (i CreateFolderInput) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.ParentID, validation.NilOrNotEmpty, validation.By(validateUUID)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	return nil
}

// FolderService manages the folder tree.
type FolderService struct {
	folders   repositories.FolderRepository
	documents repositories.DocumentRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folders repositories.FolderRepository,
	documents repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folders:   folders,
		documents: documents,
		txManager: txManager,
		logger:    logger,
	}
}

// List returns the user's folders ordered by sort order, then name.
func (s *FolderService) List(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.folders.List(ctx, userID)
}

// Get returns one folder.
func (s *FolderService) Get(ctx context.Context, userID, id string) (*models.Folder, error) {
	return s.folders.GetByID(ctx, userID, id)
}

// Create makes a new folder, verifying the parent exists when one is given.
func (s *FolderService) Create(ctx context.Context, userID string, input CreateFolderInput) (*models.Folder, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := s.folders.GetByID(ctx, userID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate folder id: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	folder := &models.Folder{
		ID:        id.String(),
		UserID:    userID,
		ParentID:  input.ParentID,
		Name:      name,
		Slug:      utils.Slugify(name),
		SortOrder: input.SortOrder,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Patch applies a partial folder update. A new parent must exist and must
// not be the folder itself; a name change re-derives the slug.
func (s *FolderService) Patch(ctx context.Context, userID, id string, patch *models.FolderPatch) (*models.Folder, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name must not be empty: %w", domain.ErrInvalidInput)
		}
		patch.Name = &trimmed
		slug := utils.Slugify(trimmed)
		patch.Slug = &slug
	}
	if patch.ParentID.Present && patch.ParentID.Value != nil {
		if *patch.ParentID.Value == id {
			return nil, fmt.Errorf("folder cannot be its own parent: %w", domain.ErrInvalidInput)
		}
		if _, err := s.folders.GetByID(ctx, userID, *patch.ParentID.Value); err != nil {
			return nil, err
		}
	}
	return s.folders.Patch(ctx, userID, id, patch)
}

// Delete removes a folder without removing anything inside it: documents in
// the folder move to root, child folders move to root, then the folder row
// goes away. The three steps run in one transaction so a failure leaves the
// tree untouched.
func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.folders.GetByID(ctx, userID, id); err != nil {
		return err
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.documents.DetachFolder(txCtx, userID, id); err != nil {
			return err
		}
		if err := s.folders.DetachParent(txCtx, userID, id); err != nil {
			return err
		}
		deleted, err := s.folders.Delete(txCtx, userID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}
