package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/social-rider/app/preferences"
)

// SampleEngagementTask recomputes the engagement patterns from the last day of
// interactions and merges them into the stored preferences.
type SampleEngagementTask struct {
	Task
	interactions InteractionSource
	prefs        PreferenceUpdater
	location     *time.Location
	now          func() time.Time
}

func NewSampleEngagementTask(interactions InteractionSource, prefs PreferenceUpdater, location *time.Location) *SampleEngagementTask {
	return &SampleEngagementTask{
		Task:         NewTask(TaskTypeSampleEngagement, "engagement"),
		interactions: interactions,
		prefs:        prefs,
		location:     location,
		now:          time.Now,
	}
}

func (t *SampleEngagementTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := t.now()
	since := now.Add(-preferences.SampleWindow).UnixMilli()

	interactions, err := t.interactions.GetInteractionsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load interactions: %w", err)
	}

	patterns := preferences.SampleEngagement(interactions, now, t.location)

	if _, err := t.prefs.Update(ctx, patterns.Patch()); err != nil {
		return fmt.Errorf("failed to store engagement patterns: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"interactions", len(interactions),
		"time_spent", patterns.TimeSpent,
		"sessions", patterns.SessionFrequency,
		"late_night", patterns.LateNightUsage,
		"rapid_scrolling", patterns.RapidScrolling,
		"duration", t.Elapsed())

	return nil
}
