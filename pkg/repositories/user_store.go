// Package repositories holds the in-memory keyed stores behind the
// pipeline, content, and media services. Every store is an interface so
// tests can substitute fakes without touching shared state.
package repositories

import (
	"sync"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/models"
)

// UserStore keeps the per-user pipeline outputs: the latest profile and
// entity graph plus the append-only list of generated content.
type UserStore interface {
	// Profile returns the user's synthesized profile.
	Profile(userID string) (*models.Profile, error)

	// Entities returns the user's latest entity graph.
	Entities(userID string) (*models.EntityGraph, error)

	// Content returns all generated content for the user, oldest first.
	Content(userID string) []models.GeneratedContent

	// ContentByID returns one content bundle.
	ContentByID(userID, contentID string) (*models.GeneratedContent, error)

	// Upsert replaces the user's profile and entities. Previously
	// generated content is preserved.
	Upsert(userID string, profile *models.Profile, entities *models.EntityGraph)

	// AddContent appends a content bundle to the user's list.
	AddContent(userID string, content models.GeneratedContent)
}

type userEntry struct {
	profile  *models.Profile
	entities *models.EntityGraph
	content  []models.GeneratedContent
}

type memoryUserStore struct {
	mu   sync.RWMutex
	data map[string]*userEntry
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() UserStore {
	return &memoryUserStore{data: make(map[string]*userEntry)}
}

var _ UserStore = (*memoryUserStore)(nil)

func (s *memoryUserStore) Profile(userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[userID]
	if !ok || entry.profile == nil {
		return nil, apperrors.ErrNoProfile
	}
	return entry.profile, nil
}

func (s *memoryUserStore) Entities(userID string) (*models.EntityGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[userID]
	if !ok || entry.entities == nil {
		return nil, apperrors.ErrNotFound
	}
	return entry.entities, nil
}

func (s *memoryUserStore) Content(userID string) []models.GeneratedContent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[userID]
	if !ok {
		return nil
	}
	out := make([]models.GeneratedContent, len(entry.content))
	copy(out, entry.content)
	return out
}

func (s *memoryUserStore) ContentByID(userID, contentID string) (*models.GeneratedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	for i := range entry.content {
		if entry.content[i].ID == contentID {
			c := entry.content[i]
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memoryUserStore) Upsert(userID string, profile *models.Profile, entities *models.EntityGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[userID]
	if !ok {
		entry = &userEntry{}
		s.data[userID] = entry
	}
	entry.profile = profile
	entry.entities = entities
}

func (s *memoryUserStore) AddContent(userID string, content models.GeneratedContent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[userID]
	if !ok {
		entry = &userEntry{}
		s.data[userID] = entry
	}
	entry.content = append(entry.content, content)
}
