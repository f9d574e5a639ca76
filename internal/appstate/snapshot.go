package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/storage"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
)

const snapshotVersion = 1

// BlobStore is the object storage a snapshot is written to.
// *storage.MinIOStorage satisfies it; Get must wrap storage.ErrNotFound for a missing key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type snapshotDoc struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"savedAt"`
	States  []*UserState `json:"states"`
}

// Snapshotter moves the contents of a MemoryRepository to and from a BlobStore.
// Load runs at process start and Save at shutdown.
type Snapshotter struct {
	repo  *MemoryRepository
	store BlobStore
	key   string
	now   func() time.Time
}

func NewSnapshotter(repo *MemoryRepository, store BlobStore, key string) *Snapshotter {
	return &Snapshotter{repo: repo, store: store, key: key, now: time.Now}
}

// Save writes every state as one JSON document.
func (s *Snapshotter) Save(ctx context.Context) error {
	doc := snapshotDoc{Version: snapshotVersion, SavedAt: s.now().UTC(), States: s.repo.Snapshot()}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state snapshot: %w", err)
	}
	if err := s.store.Put(ctx, s.key, data, "application/json"); err != nil {
		return fmt.Errorf("write state snapshot: %w", err)
	}
	logger.Infof("saved state snapshot (%d users) to %s", len(doc.States), s.key)
	return nil
}

// Load restores the repository from the stored snapshot and returns how many
// states it read. A missing snapshot is an empty start, not an error.
func (s *Snapshotter) Load(ctx context.Context) (int, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Infof("no state snapshot at %s; starting empty", s.key)
			return 0, nil
		}
		return 0, fmt.Errorf("read state snapshot: %w", err)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode state snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return 0, fmt.Errorf("unsupported state snapshot version %d", doc.Version)
	}
	s.repo.Restore(doc.States)
	return s.repo.Len(), nil
}
