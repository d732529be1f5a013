package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haashim-ali/boggart/pkg/apperrors"
	"github.com/haashim-ali/boggart/pkg/models"
)

func TestUserStore_ProfileMissing(t *testing.T) {
	store := NewMemoryUserStore()

	_, err := store.Profile("nobody")
	assert.ErrorIs(t, err, apperrors.ErrNoProfile)

	_, err = store.Entities("nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserStore_UpsertPreservesContent(t *testing.T) {
	store := NewMemoryUserStore()

	store.AddContent("user-1", models.GeneratedContent{ID: "c1", Goal: "goal"})
	store.Upsert("user-1", &models.Profile{UserID: "user-1"}, &models.EntityGraph{})

	content := store.Content("user-1")
	require.Len(t, content, 1)
	assert.Equal(t, "c1", content[0].ID)

	// A second run replaces profile and entities but keeps content.
	store.Upsert("user-1", &models.Profile{UserID: "user-1", Summary: "updated"}, &models.EntityGraph{})
	profile, err := store.Profile("user-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", profile.Summary)
	assert.Len(t, store.Content("user-1"), 1)
}

func TestUserStore_ContentByID(t *testing.T) {
	store := NewMemoryUserStore()
	store.AddContent("user-1", models.GeneratedContent{ID: "c1"})
	store.AddContent("user-1", models.GeneratedContent{ID: "c2"})

	got, err := store.ContentByID("user-1", "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.ID)

	_, err = store.ContentByID("user-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.ContentByID("other-user", "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "content is scoped per user")
}

func TestUserStore_ContentIsAppendOnlyAndOrdered(t *testing.T) {
	store := NewMemoryUserStore()
	store.AddContent("user-1", models.GeneratedContent{ID: "c1"})
	store.AddContent("user-1", models.GeneratedContent{ID: "c2"})
	store.AddContent("user-1", models.GeneratedContent{ID: "c3"})

	content := store.Content("user-1")
	require.Len(t, content, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{content[0].ID, content[1].ID, content[2].ID})
}

func TestUserStore_ContentCopyIsIsolated(t *testing.T) {
	store := NewMemoryUserStore()
	store.AddContent("user-1", models.GeneratedContent{ID: "c1", Goal: "original"})

	content := store.Content("user-1")
	content[0].Goal = "mutated"

	again := store.Content("user-1")
	assert.Equal(t, "original", again[0].Goal)
}
