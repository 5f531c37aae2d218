package bsky

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStore persists the social session between restarts.
type SessionStore interface {
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context) error
}

// AccessExpiry reads the exp claim of the access token. The signature is not
// checked; the PDS is the only party that can do that.
func AccessExpiry(session *Session) (time.Time, error) {
	if !session.Valid() {
		return time.Time{}, ErrNotLoggedIn
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.AccessJWT, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read access token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("access token has no expiry")
	}

	return exp.Time, nil
}

// NeedsRefresh reports whether the access token expires within the given
// window. Tokens without a readable expiry are refreshed.
func NeedsRefresh(session *Session, now time.Time, window time.Duration) bool {
	exp, err := AccessExpiry(session)
	if err != nil {
		return session.Valid()
	}
	return exp.Sub(now) < window
}
