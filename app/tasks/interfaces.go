package tasks

import (
	"context"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/preferences"
)

// TaskSchedulerInterface is what main needs from the scheduler.
//
//	scheduler := NewScheduler(deps, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshSessionTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task Job) error
}

type InteractionSource interface {
	GetInteractionsSince(ctx context.Context, since int64) ([]preferences.Interaction, error)
}

type PreferenceUpdater interface {
	Update(ctx context.Context, patch preferences.Patch) (preferences.UserPreferences, error)
}

type SessionRefresher interface {
	Session() *bsky.Session
	Refresh(ctx context.Context) error
}

type PresetLoader interface {
	Run() error
	GetPresetCount() int
}
