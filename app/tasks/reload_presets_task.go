package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// ReloadPresetsTask re-reads the feed preset directory so edited YAML files
// take effect without a restart.
type ReloadPresetsTask struct {
	Task
	presets PresetLoader
}

func NewReloadPresetsTask(presets PresetLoader) *ReloadPresetsTask {
	return &ReloadPresetsTask{
		Task:    NewTask(TaskTypeReloadPresets, "presets"),
		presets: presets,
	}
}

func (t *ReloadPresetsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.presets.Run(); err != nil {
		// the files stay broken until edited; the next tick tries again
		return Permanent(fmt.Errorf("failed to reload presets: %w", err))
	}

	slog.Debug("Task completed",
		"type", string(t.Type),
		"presets", t.presets.GetPresetCount(),
		"duration", t.Elapsed())

	return nil
}
