package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

type TaskType string

const (
	TaskTypeSampleEngagement TaskType = "sample_engagement"
	TaskTypeRefreshSession   TaskType = "refresh_session"
	TaskTypeReloadPresets    TaskType = "reload_presets"
)

// maxAttempts bounds how often a failing task runs before it is dropped.
// Preset reloads are not retried since the next tick reloads them anyway.
var maxAttempts = map[TaskType]int{
	TaskTypeSampleEngagement: 4,
	TaskTypeRefreshSession:   3,
	TaskTypeReloadPresets:    1,
}

// Job is a unit of work the scheduler runs. Concrete tasks embed Task, which
// provides Meta.
type Job interface {
	Execute(ctx context.Context) error
	Meta() *Task
}

// Task is the bookkeeping shared by every job.
type Task struct {
	ID          string
	Type        TaskType
	Name        string
	Attempts    int
	MaxAttempts int
	StartedAt   time.Time
}

// NewTask returns task bookkeeping with a fresh ULID. Name identifies the
// subject of the task in logs.
func NewTask(taskType TaskType, name string) Task {
	attempts, ok := maxAttempts[taskType]
	if !ok {
		attempts = 1
	}

	return Task{
		ID:          ulid.Make().String(),
		Type:        taskType,
		Name:        name,
		MaxAttempts: attempts,
	}
}

func (t *Task) Meta() *Task {
	return t
}

func (t *Task) begin(now time.Time) {
	t.Attempts++
	t.StartedAt = now
}

// Elapsed is the time since the current attempt started.
func (t *Task) Elapsed() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}

// shouldRetry reports whether another attempt may help after err.
func (t *Task) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	return t.Attempts < t.MaxAttempts
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as one that a retry cannot fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
