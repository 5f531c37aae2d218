package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/preferences"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)

	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}

func TestRunMigrations_DirtySchema(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Exec("UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)

	version, dirty, err := RunMigrations(db)
	require.ErrorIs(t, err, ErrDirtySchema)
	require.Equal(t, uint(1), version)
	require.True(t, dirty)
}

func TestSettingsRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	_, ok, err := repo.GetSetting(ctx, "userPreferences")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.PutSetting(ctx, "userPreferences", `{"outOfEchoChamber":true}`))
	require.NoError(t, repo.PutSetting(ctx, "userPreferences", `{"outOfEchoChamber":false}`))

	value, ok, err := repo.GetSetting(ctx, "userPreferences")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"outOfEchoChamber":false}`, value)
}

func TestSettingsRepo_WithPreferenceService(t *testing.T) {
	ctx := context.Background()
	service := preferences.NewService(NewSettingsRepository(newTestDB(t)))

	prefs, err := service.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, preferences.Defaults(), prefs)

	echo := true
	updated, err := service.Update(ctx, preferences.Patch{OutOfEchoChamber: &echo})
	require.NoError(t, err)
	require.True(t, updated.OutOfEchoChamber)

	reloaded, err := service.Load(ctx)
	require.NoError(t, err)
	require.True(t, reloaded.OutOfEchoChamber)
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	session, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)

	require.NoError(t, repo.SaveSession(ctx, &bsky.Session{
		DID: "did:plc:one", Handle: "one.bsky.social", AccessJWT: "a1", RefreshJWT: "r1",
	}))
	require.NoError(t, repo.SaveSession(ctx, &bsky.Session{
		DID: "did:plc:two", Handle: "two.bsky.social", AccessJWT: "a2", RefreshJWT: "r2",
	}))

	session, err = repo.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, &bsky.Session{
		DID: "did:plc:two", Handle: "two.bsky.social", AccessJWT: "a2", RefreshJWT: "r2",
	}, session)

	require.NoError(t, repo.DeleteSession(ctx))

	session, err = repo.LoadSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestInteractionRepo_AddAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionRepository(newTestDB(t))

	duration := int64(4500)
	stored, err := repo.AddInteraction(ctx, preferences.Interaction{
		PostID:    "at://did:plc:x/app.bsky.feed.post/1",
		Action:    preferences.ActionView,
		Duration:  &duration,
		Timestamp: 2000,
		Content: &preferences.PostSnapshot{
			Text:        "Hello #Go",
			Topics:      []string{"Go"},
			ContentType: []string{"text"},
			Sentiment:   "neutral",
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	_, err = repo.AddInteraction(ctx, preferences.Interaction{
		ID:        "manual-id",
		PostID:    "at://did:plc:x/app.bsky.feed.post/2",
		Action:    preferences.ActionLike,
		Timestamp: 1000,
	})
	require.NoError(t, err)

	interactions, err := repo.GetInteractions(ctx)
	require.NoError(t, err)
	require.Len(t, interactions, 2)

	require.Equal(t, "manual-id", interactions[0].ID)
	require.Nil(t, interactions[0].Duration)
	require.Nil(t, interactions[0].Content)

	require.Equal(t, stored.ID, interactions[1].ID)
	require.Equal(t, preferences.ActionView, interactions[1].Action)
	require.NotNil(t, interactions[1].Duration)
	require.Equal(t, int64(4500), *interactions[1].Duration)
	require.Equal(t, []string{"Go"}, interactions[1].Content.Topics)

	recent, err := repo.GetInteractionsSince(ctx, 1500)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, stored.ID, recent[0].ID)
}

func TestInteractionRepo_KeepsNewest(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionRepository(newTestDB(t))

	total := MaxInteractions + 15
	for i := 0; i < total; i++ {
		_, err := repo.AddInteraction(ctx, preferences.Interaction{
			PostID:    fmt.Sprintf("post-%d", i),
			Action:    preferences.ActionScrollPast,
			Timestamp: int64(1000 + i),
		})
		require.NoError(t, err)
	}

	count, err := repo.GetInteractionCount(ctx)
	require.NoError(t, err)
	require.Equal(t, MaxInteractions, count)

	interactions, err := repo.GetInteractions(ctx)
	require.NoError(t, err)
	require.Equal(t, "post-15", interactions[0].PostID)
	require.Equal(t, fmt.Sprintf("post-%d", total-1), interactions[len(interactions)-1].PostID)
}
