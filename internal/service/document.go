package service

import (
	"context"
	"errors"
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

// ContentStore is the blob store the document service reads and writes
// content through.
type ContentStore interface {
	Read(ctx context.Context, relPath string) (string, error)
	Write(ctx context.Context, relPath, content string) error
	Delete(ctx context.Context, relPath string) error
}

// CreateDocumentInput carries the fields accepted when creating a document.
type CreateDocumentInput struct {
	Title    *string `json:"title"`
	FolderID *string `json:"folder_id"`
	Content  string  `json:"content"`
}

// Validate checks the input fields
func (i CreateDocumentInput) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Title, validation.NilOrNotEmpty, validation.Length(0, 500)),
		validation.Field(&i.FolderID, validation.NilOrNotEmpty, validation.By(validateUUID)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	return nil
}

func validateUUID(value interface{}) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	if _, err := uuid.Parse(*s); err != nil {
		return errors.New("must be a valid id")
	}
	return nil
}

// DocumentService owns every multi-step write that spans the content store,
// the metadata store, the version history and the search index. No other
// component initiates cross-store writes.
type DocumentService struct {
	documents repositories.DocumentRepository
	folders   repositories.FolderRepository
	store     ContentStore
	search    repositories.SearchIndex
	versions  *VersionService
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documents repositories.DocumentRepository,
	folders repositories.FolderRepository,
	store ContentStore,
	search repositories.SearchIndex,
	versions *VersionService,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		folders:   folders,
		store:     store,
		search:    search,
		versions:  versions,
		logger:    logger,
	}
}

// List returns the user's documents, pinned first, newest update first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	return s.documents.List(ctx, userID)
}

// ListByTag returns the user's documents carrying a tag.
func (s *DocumentService) ListByTag(ctx context.Context, userID, tagID string) ([]models.Document, error) {
	return s.documents.ListByTag(ctx, userID, tagID)
}

// Get returns one document's metadata.
func (s *DocumentService) Get(ctx context.Context, userID, id string) (*models.Document, error) {
	return s.documents.GetByID(ctx, userID, id)
}

// GetContent returns a document's content. The metadata row is resolved
// first, so a missing or foreign document never reaches the content store.
func (s *DocumentService) GetContent(ctx context.Context, userID, id string) (string, error) {
	doc, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return s.store.Read(ctx, doc.FilePath)
}

// Search runs a ranked full-text query over the user's documents.
func (s *DocumentService) Search(ctx context.Context, userID, query string) ([]models.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query must not be empty: %w", domain.ErrInvalidInput)
	}
	return s.search.Search(ctx, userID, query)
}

// Create makes a new document: picks a default title when none is supplied,
// derives slug and storage path, writes the content file, inserts the
// metadata row and indexes the content. The content write happens before the
// row insert so a row never points at a missing file; if the insert fails
// the orphaned file is removed again.
func (s *DocumentService) Create(ctx context.Context, userID string, input CreateDocumentInput) (*models.Document, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var folderSlug *string
	if input.FolderID != nil {
		folder, err := s.folders.GetByID(ctx, userID, *input.FolderID)
		if err != nil {
			return nil, err
		}
		folderSlug = &folder.Slug
	}

	title, err := s.resolveTitle(ctx, userID, input.FolderID, input.Title)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate document id: %w", err)
	}

	doc := &models.Document{
		ID:        id.String(),
		UserID:    userID,
		FolderID:  input.FolderID,
		Title:     title,
		Slug:      utils.Slugify(title),
		WordCount: utils.WordCount(input.Content),
		CharCount: utils.CharCount(input.Content),
		Excerpt:   utils.Excerpt(input.Content),
	}
	doc.FilePath = utils.ContentFilePath(folderSlug, doc.Slug, doc.ID)

	if err := s.store.Write(ctx, doc.FilePath, input.Content); err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if cleanupErr := s.store.Delete(ctx, doc.FilePath); cleanupErr != nil {
			s.logger.Warn("orphaned content file after failed create",
				"path", doc.FilePath,
				"error", cleanupErr)
		}
		return nil, err
	}

	s.search.Index(ctx, doc.ID, doc.Title, input.Content, nil, nil)
	return doc, nil
}

func (s *DocumentService) resolveTitle(ctx context.Context, userID string, folderID, title *string) (string, error) {
	if title != nil && strings.TrimSpace(*title) != "" {
		return strings.TrimSpace(*title), nil
	}
	existing, err := s.documents.ListDefaultTitles(ctx, userID, folderID, utils.DefaultTitlePrefix)
	if err != nil {
		return "", err
	}
	return utils.NextDefaultTitle(existing), nil
}

// stepPolicy decides what a step failure does to the rest of the pipeline.
type stepPolicy int

const (
	// abortOnError stops the pipeline and surfaces the step's error.
	abortOnError stepPolicy = iota
	// bestEffort logs the error and continues with the next step.
	bestEffort
)

type updateStep struct {
	name   string
	policy stepPolicy
	run    func(ctx context.Context, st *updateState) error
}

// updateState is threaded through the content-update pipeline.
type updateState struct {
	doc        *models.Document
	newContent string
	// prior holds the content indexed before this update. nil means the
	// prior content could not be read, so index retraction is skipped.
	prior     *string
	wordCount int64
	charCount int64
	excerpt   *string
}

// updatePipeline orders the stores touched by a content update and fixes
// each step's failure policy. Everything after the metadata update is
// best-effort: once the row reflects the new content the operation has
// succeeded, and a broken versioning or search subsystem must not undo that.
func (s *DocumentService) updatePipeline() []updateStep {
	return []updateStep{
		{
			// Failure means we cannot retract stale index postings, which
			// degrades search, but must not block the write.
			name:   "read prior content",
			policy: bestEffort,
			run: func(ctx context.Context, st *updateState) error {
				prior, err := s.store.Read(ctx, st.doc.FilePath)
				if err != nil {
					return err
				}
				st.prior = &prior
				return nil
			},
		},
		{
			name:   "write content",
			policy: abortOnError,
			run: func(ctx context.Context, st *updateState) error {
				return s.store.Write(ctx, st.doc.FilePath, st.newContent)
			},
		},
		{
			name:   "update metadata",
			policy: abortOnError,
			run: func(ctx context.Context, st *updateState) error {
				st.wordCount = utils.WordCount(st.newContent)
				st.charCount = utils.CharCount(st.newContent)
				st.excerpt = utils.Excerpt(st.newContent)
				err := s.documents.UpdateContentStats(ctx, st.doc.UserID, st.doc.ID, st.wordCount, st.charCount, st.excerpt)
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					// The file now holds content the row does not reflect.
					// The write is idempotent, so the caller may retry.
					return &domain.StoreError{Op: "update content stats", Err: err}
				}
				return err
			},
		},
		{
			name:   "snapshot",
			policy: bestEffort,
			run: func(ctx context.Context, st *updateState) error {
				_, err := s.versions.CaptureIfDue(ctx, st.doc.ID, st.newContent, st.wordCount, st.charCount)
				return err
			},
		},
		{
			name:   "reindex search",
			policy: bestEffort,
			run: func(ctx context.Context, st *updateState) error {
				var priorTitle *string
				if st.prior != nil {
					priorTitle = &st.doc.Title
				}
				s.search.Index(ctx, st.doc.ID, st.doc.Title, st.newContent, priorTitle, st.prior)
				return nil
			},
		},
	}
}

// UpdateContent replaces a document's content and brings the dependent
// stores along. The stores commit independently; the pipeline's step order
// and per-step policy define which failures abort and which are absorbed.
func (s *DocumentService) UpdateContent(ctx context.Context, userID, id, content string) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	st := &updateState{doc: doc, newContent: content}
	for _, step := range s.updatePipeline() {
		if err := step.run(ctx, st); err != nil {
			if step.policy == abortOnError {
				return nil, fmt.Errorf("%s: %w", step.name, err)
			}
			s.logger.Warn("content update step failed",
				"step", step.name,
				"document_id", id,
				"error", err)
		}
	}

	updated, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("re-read updated document: %w", domain.ErrInternal)
	}
	return updated, nil
}

// Patch applies a partial metadata update. Moving to a folder verifies the
// target exists; a title change re-derives the slug and reindexes the title
// tokens. The storage path never changes after creation.
func (s *DocumentService) Patch(ctx context.Context, userID, id string, patch *models.DocumentPatch) (*models.Document, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("title must not be empty: %w", domain.ErrInvalidInput)
	}
	if patch.FolderID.Present && patch.FolderID.Value != nil {
		if _, err := s.folders.GetByID(ctx, userID, *patch.FolderID.Value); err != nil {
			return nil, err
		}
	}

	prior, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	titleChanged := patch.Title != nil && *patch.Title != prior.Title
	updated, err := s.documents.Patch(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}

	if titleChanged {
		slugPatch := utils.Slugify(updated.Title)
		if slugPatch != updated.Slug {
			updated, err = s.documents.Patch(ctx, userID, id, &models.DocumentPatch{Slug: &slugPatch})
			if err != nil {
				return nil, err
			}
		}
		// Title tokens are part of the index, so a rename is a reindex.
		content, readErr := s.store.Read(ctx, prior.FilePath)
		if readErr != nil {
			s.logger.Warn("skipping search reindex after rename",
				"document_id", id,
				"error", readErr)
		} else {
			s.search.Index(ctx, id, updated.Title, content, &prior.Title, &content)
		}
	}
	return updated, nil
}

// Delete removes a document everywhere: index postings first (they can only
// be retracted while the metadata row still resolves the storage row id),
// then the metadata row with its versions, then the content file. A failed
// file delete leaves an unreferenced blob and is logged, not surfaced.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if content, readErr := s.store.Read(ctx, doc.FilePath); readErr == nil {
		s.search.Remove(ctx, id, doc.Title, content)
	} else {
		s.logger.Warn("skipping index retraction on delete",
			"document_id", id,
			"error", readErr)
	}

	deleted, err := s.documents.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		s.logger.Warn("content file left behind after delete",
			"path", doc.FilePath,
			"error", err)
	}
	return nil
}

// SnapshotIfStale takes a snapshot when the document changed after its
// latest one, bypassing the interval gate. Used when a client reports the
// user has gone idle. Returns nil when no snapshot was needed.
func (s *DocumentService) SnapshotIfStale(ctx context.Context, userID, id string) (*models.DocumentVersionSummary, error) {
	doc, err := s.documents.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	needed, err := s.versions.NeedsSnapshot(ctx, doc)
	if err != nil {
		return nil, err
	}
	if !needed {
		return nil, nil
	}

	content, err := s.store.Read(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}
	return s.versions.Capture(ctx, doc.ID, content, doc.WordCount, doc.CharCount)
}
