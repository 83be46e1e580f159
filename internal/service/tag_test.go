package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
)

type fakeTagRepo struct {
	mu    sync.Mutex
	tags  map[string]*models.Tag
	links map[string]map[string]bool // documentID -> tagID set
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:  make(map[string]*models.Tag),
		links: make(map[string]map[string]bool),
	}
}

func (f *fakeTagRepo) List(ctx context.Context, userID string) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tag
	for _, tag := range f.tags {
		if tag.UserID == userID {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) GetByID(ctx context.Context, userID, id string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok || tag.UserID != userID {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tag
	f.tags[tag.ID] = &copied
	return nil
}

func (f *fakeTagRepo) Patch(ctx context.Context, userID, id string, patch *models.TagPatch) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok || tag.UserID != userID {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	if patch.Name != nil {
		tag.Name = *patch.Name
	}
	if patch.Color != nil {
		tag.Color = patch.Color
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok || tag.UserID != userID {
		return false, nil
	}
	delete(f.tags, id)
	for _, set := range f.links {
		delete(set, id)
	}
	return true, nil
}

func (f *fakeTagRepo) AddToDocument(ctx context.Context, documentID, tagID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.links[documentID] == nil {
		f.links[documentID] = make(map[string]bool)
	}
	f.links[documentID][tagID] = true
	return nil
}

func (f *fakeTagRepo) RemoveFromDocument(ctx context.Context, documentID, tagID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.links[documentID][tagID] {
		return false, nil
	}
	delete(f.links[documentID], tagID)
	return true, nil
}

func (f *fakeTagRepo) ListForDocument(ctx context.Context, documentID string) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tag
	for tagID := range f.links[documentID] {
		if tag, ok := f.tags[tagID]; ok {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func newTagFixture(t *testing.T) (*TagService, *fakeTagRepo, *fakeDocumentRepo, *fakeContentStore) {
	t.Helper()
	tags := newFakeTagRepo()
	docs := newFakeDocumentRepo()
	store := newFakeContentStore()
	return NewTagService(tags, docs, discardLogger()), tags, docs, store
}

func TestCreateTagValidation(t *testing.T) {
	svc, _, _, _ := newTagFixture(t)
	ctx := context.Background()

	badColor := "red"
	_, err := svc.Create(ctx, "user-1", CreateTagInput{Name: "ideas", Color: &badColor})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Create() with bad color error = %v, want ErrInvalidInput", err)
	}

	goodColor := "#3366ff"
	tag, err := svc.Create(ctx, "user-1", CreateTagInput{Name: "ideas", Color: &goodColor})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tag.Name != "ideas" || tag.Color == nil || *tag.Color != "#3366ff" {
		t.Errorf("tag = %+v", tag)
	}
}

func TestAttachChecksBothOwners(t *testing.T) {
	svc, tags, docs, store := newTagFixture(t)
	ctx := context.Background()

	doc := seedDocument(docs, store, "user-1", "d1", "Notes", "body")
	tags.tags["t1"] = &models.Tag{ID: "t1", UserID: "user-2", Name: "theirs"}

	if err := svc.Attach(ctx, "user-1", doc.ID, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Attach() foreign tag error = %v, want ErrNotFound", err)
	}

	tags.tags["t2"] = &models.Tag{ID: "t2", UserID: "user-1", Name: "mine"}
	if err := svc.Attach(ctx, "user-1", doc.ID, "t2"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	// Re-attaching is a no-op, not an error.
	if err := svc.Attach(ctx, "user-1", doc.ID, "t2"); err != nil {
		t.Errorf("repeat Attach() error = %v", err)
	}

	attached, err := svc.ListForDocument(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("ListForDocument() error = %v", err)
	}
	if len(attached) != 1 || attached[0].ID != "t2" {
		t.Errorf("attached = %v", attached)
	}
}

func TestDetachMissingLink(t *testing.T) {
	svc, tags, docs, store := newTagFixture(t)
	ctx := context.Background()

	doc := seedDocument(docs, store, "user-1", "d1", "Notes", "body")
	tags.tags["t1"] = &models.Tag{ID: "t1", UserID: "user-1", Name: "mine"}

	if err := svc.Detach(ctx, "user-1", doc.ID, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Detach() without link error = %v, want ErrNotFound", err)
	}
}
