package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/feed"
	"github.com/lysyi3m/social-rider/app/preview"
	"github.com/lysyi3m/social-rider/app/recommend"
)

const (
	defaultThreadDepth = 1
	maxThreadDepth     = 10
)

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		Dependencies: deps,
		generator:    feed.NewGenerator(deps.BaseURL, deps.Version),
	}
}

func (h *Handler) GetPosts(c *gin.Context) {
	opts, err := parseFeedOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
	}

	if preset := c.Query("preset"); preset != "" {
		if opts, err = h.Presets.Resolve(preset, opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.Posts.Fetch(c.Request.Context(), feed.FetchOptions{
		Cursor: c.Query("cursor"),
		Limit:  limit,
		Query:  c.Query("q"),
		Feed:   &opts,
	})
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrMissingCustomFeed), errors.Is(err, feed.ErrInvalidOption):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, bsky.ErrNotLoggedIn), errors.Is(err, bsky.ErrSessionExpired):
			slog.Warn("Post fetch needs login", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			slog.Error("Failed to fetch posts", "feed", opts.Type, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetThread(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing uri parameter"})
		return
	}

	depth := defaultThreadDepth
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid depth %q", raw)})
			return
		}
		depth = min(parsed, maxThreadDepth)
	}

	c.JSON(http.StatusOK, gin.H{"posts": h.Posts.FetchThread(c.Request.Context(), uri, depth)})
}

func (h *Handler) GetPresets(c *gin.Context) {
	presets := h.Presets.GetPresets()

	c.JSON(http.StatusOK, gin.H{
		"presets": presets,
		"total":   len(presets),
	})
}

// GetPresetFeed serves a preset as RSS so it can be followed from a feed
// reader.
func (h *Handler) GetPresetFeed(c *gin.Context) {
	name := c.Param("name")

	preset, err := h.Presets.GetPreset(name)
	if err != nil {
		c.String(http.StatusNotFound, "Feed not found")
		return
	}

	opts := preset.Options
	result, err := h.Posts.Fetch(c.Request.Context(), feed.FetchOptions{Feed: &opts})
	if err != nil {
		if errors.Is(err, bsky.ErrNotLoggedIn) || errors.Is(err, bsky.ErrSessionExpired) {
			c.String(http.StatusServiceUnavailable, "Feed is unavailable until the service is logged in")
			return
		}
		slog.Error("Failed to fetch posts", "preset", name, "error", err)
		c.String(http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	rss, err := h.generator.Run(preset, result.Posts)
	if err != nil {
		slog.Error("Failed to generate RSS", "preset", name, "error", err)
		c.String(http.StatusInternalServerError, "Failed to generate feed")
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetVideos(c *gin.Context) {
	req := recommend.Request{
		Topic:            c.Query("topic"),
		PageToken:        c.Query("pageToken"),
		OutOfEchoChamber: c.Query("outOfEchoChamber") == "true",
		ContentTypes:     splitList(c.Query("contentTypes")),
		Rules:            recommend.ParseRules(c.Query("activePrompts")),
	}

	response, err := h.Videos.Recommend(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrNoVideos):
			c.JSON(http.StatusNotFound, gin.H{"error": "No videos found"})
		case errors.Is(err, recommend.ErrNoValidIDs):
			c.JSON(http.StatusNotFound, gin.H{"error": "No valid video IDs found"})
		case errors.Is(err, recommend.ErrMissingCredentials):
			slog.Error("Video recommendations are not configured", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "YouTube API key is not configured"})
		default:
			slog.Error("Failed to fetch videos", "topic", req.Topic, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch videos"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetChannelVideos(c *gin.Context) {
	channelID := c.Param("id")
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing channel id"})
		return
	}

	videos, err := h.Channels.ChannelFeed(c.Request.Context(), channelID)
	if err != nil {
		slog.Error("Failed to fetch channel feed", "channel", channelID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch channel videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *Handler) GetPreview(c *gin.Context) {
	result, err := h.Previews.Fetch(c.Request.Context(), c.Query("url"))
	if err != nil {
		if errors.Is(err, preview.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, preview.ErrBlockedAddress) {
			slog.Warn("Refused preview of internal address", "url", c.Query("url"), "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": preview.ErrBlockedAddress.Error()})
			return
		}
		slog.Error("Failed to build preview", "url", c.Query("url"), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch preview"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.Version,
	}

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
		} else {
			health["database"] = "ok"
		}
	}

	if h.Cache != nil {
		health["cache"] = h.Cache.Health(ctx)
	}

	if h.Presets != nil {
		health["loaded_presets"] = h.Presets.GetPresetCount()
	}

	if h.Session != nil {
		health["logged_in"] = h.Session.Session() != nil
	}

	c.JSON(http.StatusOK, health)
}

func parseFeedOptions(c *gin.Context) (feed.Options, error) {
	opts := feed.Options{
		Type:          feed.FeedType(c.Query("feed")),
		CustomFeedURI: c.Query("feedUri"),
	}

	var err error
	if opts.IncludeReplies, err = parseBool(c, "includeReplies"); err != nil {
		return opts, err
	}
	if opts.IncludeReposts, err = parseBool(c, "includeReposts"); err != nil {
		return opts, err
	}
	if opts.IncludeQuotes, err = parseBool(c, "includeQuotes"); err != nil {
		return opts, err
	}

	opts.Languages = splitList(c.Query("languages"))
	opts.SortBy = feed.SortType(c.Query("sortBy"))

	included := splitList(c.Query("includeTopics"))
	excluded := splitList(c.Query("excludeTopics"))
	if len(included) > 0 || len(excluded) > 0 {
		opts.Topics = &feed.TopicFilter{IncludedTopics: included, ExcludedTopics: excluded}
	}

	contentTypes := splitList(c.Query("contentTypes"))
	sentiment := feed.Sentiment(c.Query("sentiment"))
	if len(contentTypes) > 0 || sentiment != "" {
		opts.Content = &feed.ContentFilter{Sentiment: sentiment}
		for _, t := range contentTypes {
			opts.Content.Types = append(opts.Content.Types, feed.ContentType(t))
		}
	}

	return opts, nil
}

// parseBool returns nil when the parameter is absent.
func parseBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", feed.ErrInvalidOption, name)
	}
	return &value, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
