package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
	"inkstone/internal/utils"
)

// In-memory store fakes. Each supports failure injection so pipeline steps
// can be broken one at a time.

type fakeContentStore struct {
	mu        sync.Mutex
	files     map[string]string
	readCalls int
	failRead  error
	failWrite error
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{files: make(map[string]string)}
}

func (f *fakeContentStore) Read(ctx context.Context, relPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.failRead != nil {
		return "", f.failRead
	}
	content, ok := f.files[relPath]
	if !ok {
		return "", fmt.Errorf("content file %s: %w", relPath, domain.ErrNotFound)
	}
	return content, nil
}

func (f *fakeContentStore) Write(ctx context.Context, relPath, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.files[relPath] = content
	return nil
}

func (f *fakeContentStore) Delete(ctx context.Context, relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, relPath)
	return nil
}

type fakeDocumentRepo struct {
	mu              sync.Mutex
	docs            map[string]*models.Document
	nextRowID       int64
	rowIDs          map[string]int64
	failUpdateStats error
	failCreate      error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:   make(map[string]*models.Document),
		rowIDs: make(map[string]int64),
	}
}

func (f *fakeDocumentRepo) put(doc *models.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	f.nextRowID++
	f.rowIDs[doc.ID] = f.nextRowID
}

func (f *fakeDocumentRepo) List(ctx context.Context, userID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *fakeDocumentRepo) ListByTag(ctx context.Context, userID, tagID string) ([]models.Document, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, userID, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	f.put(doc)
	return nil
}

func (f *fakeDocumentRepo) Patch(ctx context.Context, userID, id string, patch *models.DocumentPatch) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Slug != nil {
		doc.Slug = *patch.Slug
	}
	if patch.FolderID.Present {
		doc.FolderID = patch.FolderID.Value
	}
	if patch.IsPinned != nil {
		doc.IsPinned = *patch.IsPinned
	}
	if patch.IsArchived != nil {
		doc.IsArchived = *patch.IsArchived
	}
	doc.UpdatedAt = time.Now()
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) UpdateContentStats(ctx context.Context, userID, id string, wordCount, charCount int64, excerpt *string) error {
	if f.failUpdateStats != nil {
		return f.failUpdateStats
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.WordCount = wordCount
	doc.CharCount = charCount
	doc.Excerpt = excerpt
	doc.UpdatedAt = time.Now()
	return nil
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return false, nil
	}
	delete(f.docs, id)
	return true, nil
}

func (f *fakeDocumentRepo) RowID(ctx context.Context, id string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rowID, ok := f.rowIDs[id]
	if _, exists := f.docs[id]; !exists {
		return 0, false, nil
	}
	return rowID, ok, nil
}

func (f *fakeDocumentRepo) ListDefaultTitles(ctx context.Context, userID string, folderID *string, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, doc := range f.docs {
		if doc.UserID != userID || !strings.HasPrefix(doc.Title, prefix) {
			continue
		}
		if (folderID == nil) != (doc.FolderID == nil) {
			continue
		}
		if folderID != nil && *folderID != *doc.FolderID {
			continue
		}
		titles = append(titles, doc.Title)
	}
	return titles, nil
}

func (f *fakeDocumentRepo) DetachFolder(ctx context.Context, userID, folderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.UserID == userID && doc.FolderID != nil && *doc.FolderID == folderID {
			doc.FolderID = nil
		}
	}
	return nil
}

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (f *fakeFolderRepo) put(folder *models.Folder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *folder
	f.folders[folder.ID] = &copied
}

func (f *fakeFolderRepo) List(ctx context.Context, userID string) ([]models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Folder
	for _, folder := range f.folders {
		if folder.UserID == userID {
			out = append(out, *folder)
		}
	}
	return out, nil
}

func (f *fakeFolderRepo) GetByID(ctx context.Context, userID, id string) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	now := time.Now()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	f.put(folder)
	return nil
}

func (f *fakeFolderRepo) Patch(ctx context.Context, userID, id string, patch *models.FolderPatch) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if patch.Name != nil {
		folder.Name = *patch.Name
	}
	if patch.Slug != nil {
		folder.Slug = *patch.Slug
	}
	if patch.ParentID.Present {
		folder.ParentID = patch.ParentID.Value
	}
	if patch.SortOrder != nil {
		folder.SortOrder = *patch.SortOrder
	}
	folder.UpdatedAt = time.Now()
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.UserID != userID {
		return false, nil
	}
	delete(f.folders, id)
	return true, nil
}

func (f *fakeFolderRepo) DetachParent(ctx context.Context, userID, parentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.ParentID != nil && *folder.ParentID == parentID {
			folder.ParentID = nil
		}
	}
	return nil
}

type fakeVersionRepo struct {
	mu         sync.Mutex
	versions   map[string][]models.DocumentVersion
	failInsert error
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.DocumentVersion)}
}

func (f *fakeVersionRepo) Insert(ctx context.Context, id, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return nil, f.failInsert
	}
	var max int64
	for _, v := range f.versions[documentID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	v := models.DocumentVersion{
		ID:            id,
		DocumentID:    documentID,
		VersionNumber: max + 1,
		Content:       content,
		WordCount:     wordCount,
		CharCount:     charCount,
		CreatedAt:     time.Now(),
	}
	f.versions[documentID] = append(f.versions[documentID], v)
	return &models.DocumentVersionSummary{
		ID:            v.ID,
		DocumentID:    v.DocumentID,
		VersionNumber: v.VersionNumber,
		WordCount:     v.WordCount,
		CharCount:     v.CharCount,
		CreatedAt:     v.CreatedAt,
	}, nil
}

func (f *fakeVersionRepo) List(ctx context.Context, documentID string) ([]models.DocumentVersionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := append([]models.DocumentVersion(nil), f.versions[documentID]...)
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	var out []models.DocumentVersionSummary
	for _, v := range versions {
		out = append(out, models.DocumentVersionSummary{
			ID:            v.ID,
			DocumentID:    v.DocumentID,
			VersionNumber: v.VersionNumber,
			WordCount:     v.WordCount,
			CharCount:     v.CharCount,
			CreatedAt:     v.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeVersionRepo) GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions[documentID] {
		if v.ID == versionID {
			copied := v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
}

func (f *fakeVersionRepo) LatestCreatedAt(ctx context.Context, documentID string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	var maxNum int64
	found := false
	for _, v := range f.versions[documentID] {
		if v.VersionNumber > maxNum {
			maxNum = v.VersionNumber
			latest = v.CreatedAt
			found = true
		}
	}
	return latest, found, nil
}

func (f *fakeVersionRepo) Prune(ctx context.Context, documentID string, keep int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.versions[documentID]
	if len(versions) <= keep {
		return 0, nil
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	removed := int64(len(versions) - keep)
	f.versions[documentID] = append([]models.DocumentVersion(nil), versions[:keep]...)
	return removed, nil
}

// indexCall records one Index or Remove invocation.
type indexCall struct {
	op           string // "index" or "remove"
	documentID   string
	title        string
	content      string
	priorTitle   *string
	priorContent *string
}

type fakeSearchIndex struct {
	mu      sync.Mutex
	calls   []indexCall
	results []models.Document
}

func (f *fakeSearchIndex) Index(ctx context.Context, documentID, title, content string, priorTitle, priorContent *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, indexCall{
		op:           "index",
		documentID:   documentID,
		title:        title,
		content:      content,
		priorTitle:   priorTitle,
		priorContent: priorContent,
	})
}

func (f *fakeSearchIndex) Remove(ctx context.Context, documentID, priorTitle, priorContent string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, indexCall{
		op:           "remove",
		documentID:   documentID,
		priorTitle:   &priorTitle,
		priorContent: &priorContent,
	})
}

func (f *fakeSearchIndex) Search(ctx context.Context, userID, query string) ([]models.Document, error) {
	return f.results, nil
}

func (f *fakeSearchIndex) lastCall() *indexCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	call := f.calls[len(f.calls)-1]
	return &call
}

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func seedDocument(docs *fakeDocumentRepo, store *fakeContentStore, userID, id, title, content string) *models.Document {
	doc := &models.Document{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Slug:      utils.Slugify(title),
		FilePath:  utils.ContentFilePath(nil, utils.Slugify(title), id),
		WordCount: utils.WordCount(content),
		CharCount: utils.CharCount(content),
		Excerpt:   utils.Excerpt(content),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	docs.put(doc)
	store.files[doc.FilePath] = content
	return doc
}
