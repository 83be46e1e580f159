package service

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newVersionFixture(t *testing.T, interval time.Duration, maxVersions int) (*VersionService, *fakeVersionRepo, *fakeDocumentRepo) {
	t.Helper()
	versions := newFakeVersionRepo()
	docs := newFakeDocumentRepo()
	svc := NewVersionService(versions, docs, interval, maxVersions, discardLogger())
	return svc, versions, docs
}

func TestCaptureNumbersAreGapless(t *testing.T) {
	svc, _, _ := newVersionFixture(t, 0, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		summary, err := svc.Capture(ctx, "doc-1", "content", 1, 7)
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if summary.VersionNumber != int64(i+1) {
			t.Errorf("version = %d, want %d", summary.VersionNumber, i+1)
		}
	}
}

func TestCaptureConcurrentNumbering(t *testing.T) {
	svc, versions, _ := newVersionFixture(t, 0, 1000)
	ctx := context.Background()

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Capture(ctx, "doc-1", "content", 1, 7); err != nil {
				t.Errorf("Capture() error = %v", err)
			}
		}()
	}
	wg.Wait()

	list, err := versions.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != writers {
		t.Fatalf("got %d versions, want %d", len(list), writers)
	}
	// List is newest first; numbers must be writers..1 with no gaps or
	// duplicates.
	for i, summary := range list {
		want := int64(writers - i)
		if summary.VersionNumber != want {
			t.Errorf("position %d: version = %d, want %d", i, summary.VersionNumber, want)
		}
	}
}

func TestCaptureIfDueRespectsInterval(t *testing.T) {
	svc, _, _ := newVersionFixture(t, 5*time.Minute, 100)
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }

	first, err := svc.CaptureIfDue(ctx, "doc-1", "v1", 1, 2)
	if err != nil {
		t.Fatalf("CaptureIfDue() error = %v", err)
	}
	if first == nil {
		t.Fatal("first capture = nil, want a snapshot when none exists")
	}

	second, err := svc.CaptureIfDue(ctx, "doc-1", "v2", 1, 2)
	if err != nil {
		t.Fatalf("CaptureIfDue() error = %v", err)
	}
	if second != nil {
		t.Error("second capture inside the interval must be skipped")
	}

	svc.now = func() time.Time { return base.Add(6 * time.Minute) }
	third, err := svc.CaptureIfDue(ctx, "doc-1", "v3", 1, 2)
	if err != nil {
		t.Fatalf("CaptureIfDue() error = %v", err)
	}
	if third == nil || third.VersionNumber != 2 {
		t.Errorf("capture after interval = %v, want version 2", third)
	}
}

func TestCapturePrunesToRetentionBound(t *testing.T) {
	svc, versions, _ := newVersionFixture(t, 0, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Capture(ctx, "doc-1", "content", 1, 7); err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
	}

	list, err := versions.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d versions, want 3", len(list))
	}
	for i, want := range []int64{5, 4, 3} {
		if list[i].VersionNumber != want {
			t.Errorf("position %d: version = %d, want %d (highest numbers kept)", i, list[i].VersionNumber, want)
		}
	}
}

func TestListChecksOwnership(t *testing.T) {
	svc, versions, docs := newVersionFixture(t, 0, 100)
	ctx := context.Background()

	store := newFakeContentStore()
	doc := seedDocument(docs, store, "user-1", "doc-1", "Notes", "content")
	if _, err := versions.Insert(ctx, "v1", doc.ID, "content", 1, 7); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if _, err := svc.List(ctx, "user-2", doc.ID); err == nil {
		t.Error("List() for another user's document must fail")
	}

	list, err := svc.List(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d versions, want 1", len(list))
	}
}
