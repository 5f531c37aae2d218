package database

import (
	"context"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/preferences"
)

type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

type SessionRepository interface {
	LoadSession(ctx context.Context) (*bsky.Session, error)
	SaveSession(ctx context.Context, session *bsky.Session) error
	DeleteSession(ctx context.Context) error
}

type InteractionRepository interface {
	AddInteraction(ctx context.Context, interaction preferences.Interaction) (preferences.Interaction, error)
	GetInteractions(ctx context.Context) ([]preferences.Interaction, error)
	GetInteractionsSince(ctx context.Context, since int64) ([]preferences.Interaction, error)
	GetInteractionCount(ctx context.Context) (int, error)
}

var (
	_ SettingsRepository    = (*SettingsRepo)(nil)
	_ SessionRepository     = (*SessionRepo)(nil)
	_ InteractionRepository = (*InteractionRepo)(nil)

	_ preferences.SettingsStore = (*SettingsRepo)(nil)
	_ bsky.SessionStore         = (*SessionRepo)(nil)
)
