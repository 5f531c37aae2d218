package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lysyi3m/social-rider/app/bsky"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Source is the upstream social network. *bsky.Client satisfies it.
type Source interface {
	GetTimeline(ctx context.Context, cursor string, limit int) (*bsky.FeedPage, error)
	GetFeed(ctx context.Context, feedURI, cursor string, limit int) (*bsky.FeedPage, error)
	GetPostThread(ctx context.Context, uri string, depth int) (*bsky.ThreadViewPost, error)
	ClearSession(ctx context.Context) error
}

type Fetcher struct {
	source    Source
	annotator *Annotator
	filterer  *Filterer
}

func NewFetcher(source Source, annotator *Annotator, filterer *Filterer) *Fetcher {
	return &Fetcher{
		source:    source,
		annotator: annotator,
		filterer:  filterer,
	}
}

// Fetch reads one page of the selected feed, annotates every post and runs
// the filter chain over the page.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) (*Result, error) {
	limit := ClampLimit(opts.Limit)

	var filter *Filter
	if opts.Feed != nil {
		if err := opts.Feed.Validate(); err != nil {
			return nil, err
		}
		filter = &opts.Feed.Filter
	}

	page, err := f.fetchPage(ctx, opts.Feed, opts.Cursor, limit)
	if err != nil {
		if isSessionError(err) {
			slog.Warn("Discarding session after upstream auth error", "error", err)
			if clearErr := f.source.ClearSession(ctx); clearErr != nil {
				slog.Error("Failed to clear session", "error", clearErr)
			}
			err = &sessionError{err: err}
		}
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	posts := make([]Post, 0, len(page.Feed))
	for _, item := range page.Feed {
		posts = append(posts, f.annotator.Run(item))
	}

	posts = f.filterer.Run(posts, filter, opts.Query)

	slog.Debug("Posts fetched", "feed", feedTypeOf(opts.Feed), "fetched", len(page.Feed), "kept", len(posts))

	return &Result{
		Posts:  posts,
		Cursor: page.Cursor,
	}, nil
}

// FetchThread returns the root post followed by its direct replies. Failures
// are logged and yield an empty list.
func (f *Fetcher) FetchThread(ctx context.Context, uri string, depth int) []Post {
	posts := make([]Post, 0)

	thread, err := f.source.GetPostThread(ctx, uri, depth)
	if err != nil {
		slog.Error("Failed to fetch post thread", "uri", uri, "error", err)
		return posts
	}
	if thread == nil || thread.Type != bsky.ThreadViewPostType {
		return posts
	}

	posts = append(posts, f.annotator.RunThreadPost(thread.Post))
	for _, reply := range thread.Replies {
		if reply.Type != bsky.ThreadViewPostType {
			continue
		}
		posts = append(posts, f.annotator.RunThreadPost(reply.Post))
	}

	return posts
}

func (f *Fetcher) fetchPage(ctx context.Context, opts *Options, cursor string, limit int) (*bsky.FeedPage, error) {
	switch feedTypeOf(opts) {
	case FeedTypePopular:
		return f.source.GetFeed(ctx, PopularFeedURI, cursor, limit)
	case FeedTypeCustom:
		return f.source.GetFeed(ctx, opts.CustomFeedURI, cursor, limit)
	default:
		return f.source.GetTimeline(ctx, cursor, limit)
	}
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func feedTypeOf(opts *Options) FeedType {
	if opts == nil || opts.Type == "" {
		return FeedTypeTimeline
	}
	return opts.Type
}

// isSessionError reports whether the upstream rejected the access token.
// Only XRPC errors count; transport and decode failures keep the session.
func isSessionError(err error) bool {
	var apiErr *bsky.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Name {
	case "ExpiredToken", "InvalidToken", "AuthenticationRequired", "AuthMissing":
		return true
	}
	if apiErr.Status == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(apiErr.Message, "expired") || strings.Contains(apiErr.Message, "invalid token")
}

// sessionError keeps the upstream message while also matching
// bsky.ErrSessionExpired.
type sessionError struct {
	err error
}

func (e *sessionError) Error() string {
	return e.err.Error()
}

func (e *sessionError) Unwrap() []error {
	return []error{bsky.ErrSessionExpired, e.err}
}
