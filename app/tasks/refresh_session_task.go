package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lysyi3m/social-rider/app/bsky"
)

// RefreshWindow is how close to expiry an access token gets refreshed.
const RefreshWindow = 5 * time.Minute

type RefreshSessionTask struct {
	Task
	client SessionRefresher
	now    func() time.Time
}

func NewRefreshSessionTask(client SessionRefresher) *RefreshSessionTask {
	return &RefreshSessionTask{
		Task:   NewTask(TaskTypeRefreshSession, "session"),
		client: client,
		now:    time.Now,
	}
}

func (t *RefreshSessionTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	session := t.client.Session()
	if !session.Valid() {
		slog.Debug("No session to refresh")
		return nil
	}

	if !bsky.NeedsRefresh(session, t.now(), RefreshWindow) {
		slog.Debug("Session not due for refresh", "handle", session.Handle)
		return nil
	}

	if err := t.client.Refresh(ctx); err != nil {
		if errors.Is(err, bsky.ErrSessionExpired) || errors.Is(err, bsky.ErrNotLoggedIn) {
			// session is gone, retrying cannot help
			slog.Warn("Session expired, login required", "handle", session.Handle, "error", err)
			return nil
		}
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"handle", session.Handle,
		"duration", t.Elapsed())

	return nil
}
