// Package bsky is a small XRPC client for the Bluesky AppView and PDS.
package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

const defaultBaseURL = "https://bsky.social"

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrLoginFailed        = errors.New("login failed")
)

// HTTPClient allows injecting a custom transport in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithSessionStore(store SessionStore) ClientOption {
	return func(c *Client) {
		c.store = store
	}
}

type Client struct {
	baseURL    string
	httpClient HTTPClient
	store      SessionStore

	mu      sync.RWMutex
	session *Session
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Resume restores a stored session. A stored session missing either token is
// removed from the store.
func (c *Client) Resume(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	session, err := c.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil
	}

	if !session.Valid() {
		slog.Warn("Discarding incomplete stored session", "handle", session.Handle)
		return c.deleteStored(ctx)
	}

	c.setSession(session)
	slog.Info("Session resumed", "handle", session.Handle)
	return nil
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	if err := c.ClearSession(ctx); err != nil {
		slog.Warn("Failed to clear previous session", "error", err)
	}

	body := createSessionRequest{Identifier: identifier, Password: password}

	var session Session
	err := c.do(ctx, http.MethodPost, "com.atproto.server.createSession", nil, body, "", &session)
	if err != nil {
		slog.Error("Login failed", "identifier", identifier, "error", err)

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusUnauthorized:
				return nil, ErrInvalidCredentials
			case http.StatusTooManyRequests:
				return nil, ErrRateLimited
			}
		}
		return nil, ErrLoginFailed
	}

	if err := c.persist(ctx, &session); err != nil {
		return nil, err
	}

	slog.Info("Logged in", "handle", session.Handle)
	return c.Session(), nil
}

// Refresh exchanges the refresh token for a new token pair. An expired or
// invalid refresh token drops the session.
func (c *Client) Refresh(ctx context.Context) error {
	current := c.Session()
	if !current.Valid() {
		return ErrNotLoggedIn
	}

	var session Session
	err := c.do(ctx, http.MethodPost, "com.atproto.server.refreshSession", nil, nil, current.RefreshJWT, &session)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Name == "ExpiredToken" || apiErr.Name == "InvalidToken") {
			if clearErr := c.ClearSession(ctx); clearErr != nil {
				slog.Warn("Failed to clear expired session", "error", clearErr)
			}
			return fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	return c.persist(ctx, &session)
}

func (c *Client) ClearSession(ctx context.Context) error {
	c.setSession(nil)
	return c.deleteStored(ctx)
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

func (c *Client) GetTimeline(ctx context.Context, cursor string, limit int) (*FeedPage, error) {
	var page FeedPage
	if err := c.authed(ctx, "app.bsky.feed.getTimeline", pageQuery(cursor, limit), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetFeed(ctx context.Context, feedURI, cursor string, limit int) (*FeedPage, error) {
	query := pageQuery(cursor, limit)
	query.Set("feed", feedURI)

	var page FeedPage
	if err := c.authed(ctx, "app.bsky.feed.getFeed", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetPostThread(ctx context.Context, uri string, depth int) (*ThreadViewPost, error) {
	query := url.Values{}
	query.Set("uri", uri)
	query.Set("depth", strconv.Itoa(depth))

	var response threadResponse
	if err := c.authed(ctx, "app.bsky.feed.getPostThread", query, &response); err != nil {
		return nil, err
	}
	return &response.Thread, nil
}

func (c *Client) authed(ctx context.Context, method string, query url.Values, out any) error {
	session := c.Session()
	if session == nil {
		return ErrNotLoggedIn
	}
	return c.do(ctx, http.MethodGet, method, query, nil, session.AccessJWT, out)
}

func (c *Client) do(ctx context.Context, httpMethod, method string, query url.Values, in any, token string, out any) error {
	endpoint := fmt.Sprintf("%s/xrpc/%s", c.baseURL, method)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}

	return nil
}

func (c *Client) persist(ctx context.Context, session *Session) error {
	c.setSession(session)

	if c.store == nil {
		return nil
	}
	if err := c.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (c *Client) deleteStored(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func pageQuery(cursor string, limit int) url.Values {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query
}
