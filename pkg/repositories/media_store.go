package repositories

import (
	"fmt"
	"sync"

	"github.com/haashim-ali/boggart/pkg/models"
)

// MediaStatusStore holds the latest published lifecycle status for each
// video asset, keyed by content id. Transitions are validated; a
// terminal status never changes.
type MediaStatusStore interface {
	// Publish records a status transition for the content id. Illegal
	// transitions are rejected.
	Publish(contentID string, status models.MediaStatus) error

	// Get returns the latest status, defaulting to unavailable.
	Get(contentID string) models.MediaStatus

	// Delete removes the entry.
	Delete(contentID string)
}

type memoryMediaStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]models.MediaStatus
}

// NewMemoryMediaStatusStore creates an empty media status store.
func NewMemoryMediaStatusStore() MediaStatusStore {
	return &memoryMediaStatusStore{statuses: make(map[string]models.MediaStatus)}
}

var _ MediaStatusStore = (*memoryMediaStatusStore)(nil)

func (s *memoryMediaStatusStore) Publish(contentID string, status models.MediaStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.statuses[contentID]
	if !ok {
		current = models.MediaUnavailable()
	}
	if !current.State.CanTransition(status.State) {
		return fmt.Errorf("illegal media transition %s -> %s for content %s",
			current.State, status.State, contentID)
	}
	s.statuses[contentID] = status
	return nil
}

func (s *memoryMediaStatusStore) Get(contentID string) models.MediaStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[contentID]
	if !ok {
		return models.MediaUnavailable()
	}
	return status
}

func (s *memoryMediaStatusStore) Delete(contentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, contentID)
}

// MediaFileStore maps content ids to materialized media file paths.
type MediaFileStore interface {
	Put(contentID, path string)
	Get(contentID string) (string, bool)
	Delete(contentID string)
}

type memoryMediaFileStore struct {
	mu    sync.RWMutex
	paths map[string]string
}

// NewMemoryMediaFileStore creates an empty media file store.
func NewMemoryMediaFileStore() MediaFileStore {
	return &memoryMediaFileStore{paths: make(map[string]string)}
}

var _ MediaFileStore = (*memoryMediaFileStore)(nil)

func (s *memoryMediaFileStore) Put(contentID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[contentID] = path
}

func (s *memoryMediaFileStore) Get(contentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.paths[contentID]
	return path, ok
}

func (s *memoryMediaFileStore) Delete(contentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, contentID)
}
