package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lysyi3m/social-rider/app/bsky"
)

// SessionRepo keeps the single social network session row.
type SessionRepo struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// LoadSession returns nil without error when no session is stored.
func (r *SessionRepo) LoadSession(ctx context.Context) (*bsky.Session, error) {
	var session bsky.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT did, handle, access_jwt, refresh_jwt
		FROM sessions
		WHERE id = 1
	`).Scan(&session.DID, &session.Handle, &session.AccessJWT, &session.RefreshJWT)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepo) SaveSession(ctx context.Context, session *bsky.Session) error {
	if session == nil {
		return r.DeleteSession(ctx)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, did, handle, access_jwt, refresh_jwt, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			did = excluded.did,
			handle = excluded.handle,
			access_jwt = excluded.access_jwt,
			refresh_jwt = excluded.refresh_jwt,
			updated_at = excluded.updated_at
	`, session.DID, session.Handle, session.AccessJWT, session.RefreshJWT, now())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
