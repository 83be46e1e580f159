package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkstone/internal/domain/models"
	"inkstone/internal/domain/repositories"
)

// keyedMutex hands out one mutex per key. Entries are reference-counted and
// removed once the last holder unlocks, so the map does not grow with the
// number of documents ever touched.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*lockEntry)}
}

// Lock blocks until the key's mutex is held and returns the unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// VersionService manages immutable document snapshots: the interval gate,
// monotonic version numbering, and retention pruning. Version-number
// assignment is serialized per document through an in-memory keyed lock on
// top of the repository's single-statement max+1 insert.
type VersionService struct {
	versions    repositories.VersionRepository
	documents   repositories.DocumentRepository
	locks       *keyedMutex
	minInterval time.Duration
	maxVersions int
	logger      *slog.Logger
	now         func() time.Time
}

// NewVersionService creates a new version service
func NewVersionService(
	versions repositories.VersionRepository,
	documents repositories.DocumentRepository,
	minInterval time.Duration,
	maxVersions int,
	logger *slog.Logger,
) *VersionService {
	return &VersionService{
		versions:    versions,
		documents:   documents,
		locks:       newKeyedMutex(),
		minInterval: minInterval,
		maxVersions: maxVersions,
		logger:      logger,
		now:         time.Now,
	}
}

// ShouldSnapshot reports whether enough time has passed since the document's
// latest snapshot. A document with no snapshots is always due.
func (s *VersionService) ShouldSnapshot(ctx context.Context, documentID string) (bool, error) {
	latest, ok, err := s.versions.LatestCreatedAt(ctx, documentID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return s.now().Sub(latest) >= s.minInterval, nil
}

// NeedsSnapshot reports whether the document changed after its latest
// snapshot was taken. Used by idle-triggered snapshot requests, which ignore
// the interval gate.
func (s *VersionService) NeedsSnapshot(ctx context.Context, doc *models.Document) (bool, error) {
	latest, ok, err := s.versions.LatestCreatedAt(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return doc.UpdatedAt.After(latest), nil
}

// Capture inserts a snapshot with the next version number and prunes old
// snapshots beyond the retention bound. A prune failure is logged, not
// returned; the snapshot already exists.
func (s *VersionService) Capture(ctx context.Context, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	return s.captureLocked(ctx, documentID, content, wordCount, charCount)
}

// CaptureIfDue takes a snapshot only when the interval gate allows one. The
// gate is re-checked under the per-document lock so two concurrent writers
// cannot both pass it. Returns nil with no error when the gate is closed.
func (s *VersionService) CaptureIfDue(ctx context.Context, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	due, err := s.ShouldSnapshot(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !due {
		return nil, nil
	}
	return s.captureLocked(ctx, documentID, content, wordCount, charCount)
}

func (s *VersionService) captureLocked(ctx context.Context, documentID, content string, wordCount, charCount int64) (*models.DocumentVersionSummary, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate version id: %w", err)
	}

	summary, err := s.versions.Insert(ctx, id.String(), documentID, content, wordCount, charCount)
	if err != nil {
		return nil, err
	}

	pruned, err := s.versions.Prune(ctx, documentID, s.maxVersions)
	if err != nil {
		s.logger.Warn("version prune failed",
			"document_id", documentID,
			"error", err)
	} else if pruned > 0 {
		s.logger.Debug("pruned old versions",
			"document_id", documentID,
			"removed", pruned)
	}
	return summary, nil
}

// List returns the document's snapshot summaries, newest first. Ownership is
// checked through the document row first.
func (s *VersionService) List(ctx context.Context, userID, documentID string) ([]models.DocumentVersionSummary, error) {
	if _, err := s.documents.GetByID(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.versions.List(ctx, documentID)
}

// Get returns one snapshot including its content.
func (s *VersionService) Get(ctx context.Context, userID, documentID, versionID string) (*models.DocumentVersion, error) {
	if _, err := s.documents.GetByID(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.versions.GetByID(ctx, documentID, versionID)
}
