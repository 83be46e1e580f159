package service

import (
	"context"
	"errors"
	"testing"

	"inkstone/internal/domain"
	"inkstone/internal/domain/models"
)

type folderFixture struct {
	folders *fakeFolderRepo
	docs    *fakeDocumentRepo
	store   *fakeContentStore
	svc     *FolderService
}

func newFolderFixture(t *testing.T) *folderFixture {
	t.Helper()
	folders := newFakeFolderRepo()
	docs := newFakeDocumentRepo()
	return &folderFixture{
		folders: folders,
		docs:    docs,
		store:   newFakeContentStore(),
		svc:     NewFolderService(folders, docs, fakeTxManager{}, discardLogger()),
	}
}

func TestCreateFolder(t *testing.T) {
	fx := newFolderFixture(t)

	folder, err := fx.svc.Create(context.Background(), "user-1", CreateFolderInput{Name: "  Project Drafts "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if folder.Name != "Project Drafts" {
		t.Errorf("name = %q", folder.Name)
	}
	if folder.Slug != "project-drafts" {
		t.Errorf("slug = %q", folder.Slug)
	}
}

func TestCreateFolderEmptyName(t *testing.T) {
	fx := newFolderFixture(t)

	_, err := fx.svc.Create(context.Background(), "user-1", CreateFolderInput{Name: ""})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Create() error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateFolderMissingParent(t *testing.T) {
	fx := newFolderFixture(t)
	parent := "019305aa-0000-7000-8000-000000000001"

	_, err := fx.svc.Create(context.Background(), "user-1", CreateFolderInput{Name: "Child", ParentID: &parent})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestPatchFolderSelfParent(t *testing.T) {
	fx := newFolderFixture(t)
	fx.folders.put(&models.Folder{ID: "f1", UserID: "user-1", Name: "Loop", Slug: "loop"})

	self := "f1"
	_, err := fx.svc.Patch(context.Background(), "user-1", "f1", &models.FolderPatch{
		ParentID: models.OptionalRef{Present: true, Value: &self},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Patch() error = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteFolderDetachesDependents(t *testing.T) {
	fx := newFolderFixture(t)
	ctx := context.Background()

	parentID := "f-parent"
	childID := "f-child"
	fx.folders.put(&models.Folder{ID: parentID, UserID: "user-1", Name: "Parent", Slug: "parent"})
	fx.folders.put(&models.Folder{ID: childID, UserID: "user-1", ParentID: &parentID, Name: "Child", Slug: "child"})

	doc := seedDocument(fx.docs, fx.store, "user-1", "d1", "Inside", "kept content")
	if _, err := fx.docs.Patch(ctx, "user-1", doc.ID, &models.DocumentPatch{
		FolderID: models.OptionalRef{Present: true, Value: &parentID},
	}); err != nil {
		t.Fatalf("seed patch error = %v", err)
	}

	if err := fx.svc.Delete(ctx, "user-1", parentID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := fx.folders.GetByID(ctx, "user-1", parentID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("deleted folder still present")
	}

	// The document survives, detached, with content untouched.
	got, err := fx.docs.GetByID(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("document gone after folder delete: %v", err)
	}
	if got.FolderID != nil {
		t.Errorf("document folder id = %v, want nil", *got.FolderID)
	}
	if content := fx.store.files[doc.FilePath]; content != "kept content" {
		t.Errorf("document content = %q, want unchanged", content)
	}

	// The child folder survives at root level.
	child, err := fx.folders.GetByID(ctx, "user-1", childID)
	if err != nil {
		t.Fatalf("child folder gone after parent delete: %v", err)
	}
	if child.ParentID != nil {
		t.Errorf("child parent id = %v, want nil", *child.ParentID)
	}
}

func TestDeleteFolderCrossUser(t *testing.T) {
	fx := newFolderFixture(t)
	fx.folders.put(&models.Folder{ID: "f1", UserID: "user-1", Name: "Mine", Slug: "mine"})

	err := fx.svc.Delete(context.Background(), "user-2", "f1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
