package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize   = 300
	taskTimeout = 5 * time.Minute
	maxBackoff  = 30 * time.Second
)

// Dependencies are the collaborators the periodic tasks run against. A nil
// field disables the tasks that need it.
type Dependencies struct {
	Interactions InteractionSource
	Preferences  PreferenceUpdater
	Session      SessionRefresher
	Presets      PresetLoader
	Location     *time.Location
}

type Scheduler struct {
	deps        Dependencies
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan Job
}

func NewScheduler(deps Dependencies, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if workerCount < 1 {
		workerCount = 1
	}

	return &Scheduler{
		deps:        deps,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan Job, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task Job) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if s.deps.Session != nil {
		s.enqueue(NewRefreshSessionTask(s.deps.Session))
	}
	if s.deps.Interactions != nil && s.deps.Preferences != nil {
		s.enqueue(NewSampleEngagementTask(s.deps.Interactions, s.deps.Preferences, s.deps.Location))
	}
}

func (s *Scheduler) enqueueTasks() {
	s.enqueueStartupTasks()

	if s.deps.Presets != nil {
		s.enqueue(NewReloadPresetsTask(s.deps.Presets))
	}
}

func (s *Scheduler) enqueue(task Job) {
	if err := s.EnqueueTask(task); err != nil {
		meta := task.Meta()
		slog.Warn("Failed to enqueue task", "type", string(meta.Type), "name", meta.Name, "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task Job) {
	meta := task.Meta()
	meta.begin(time.Now())

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(meta.Type), "id", meta.ID, "attempt", meta.Attempts, "error", err)

	if !meta.shouldRetry(err) {
		slog.Error("Task dropped", "type", string(meta.Type), "id", meta.ID, "attempts", meta.Attempts, "max_attempts", meta.MaxAttempts, "last_error", err)
		return
	}

	retryDelay := backoff(meta.Attempts)

	slog.Warn("Task retry scheduled", "type", string(meta.Type), "name", meta.Name, "attempt", meta.Attempts, "max_attempts", meta.MaxAttempts, "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(meta.Type), "id", meta.ID)
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(meta.Type), "id", meta.ID, "attempt", meta.Attempts, "error", retryErr)
			}
		}
	}()
}

// backoff doubles from one second per retry, capped at 30 seconds.
func backoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := time.Duration(1<<uint(retry-1)) * time.Second
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
