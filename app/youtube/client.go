// Package youtube provides a client for the YouTube Data API v3.
package youtube

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com"

var ErrMissingAPIKey = errors.New("youtube API key is not configured")

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets the API host (useful for testing). The /youtube/v3 path
// is appended per request.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithFeedBaseURL sets the host serving public channel feeds.
func WithFeedBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.feedBaseURL = url
	}
}

// Client is a YouTube Data API client authenticated with an API key.
type Client struct {
	apiKey      string
	baseURL     string
	feedBaseURL string
	httpClient  HTTPClient
}

// NewClient creates a new YouTube API client. An empty key leaves Search and
// Videos unusable but ChannelFeed still works.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		feedBaseURL: defaultFeedBaseURL,
		httpClient:  &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search runs search.list with part=snippet.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("q", params.Query)
	if params.MaxResults > 0 {
		query.Set("maxResults", strconv.Itoa(params.MaxResults))
	}
	if params.Type != "" {
		query.Set("type", params.Type)
	}
	if params.VideoDuration != "" {
		query.Set("videoDuration", params.VideoDuration)
	}
	if params.PageToken != "" {
		query.Set("pageToken", params.PageToken)
	}

	body, err := c.doRequest(ctx, "search", query)
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	result := &SearchResult{
		Items:         make([]Video, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	for _, item := range response.Items {
		result.Items = append(result.Items, toVideo(item.ID.VideoID, item.Snippet))
	}

	return result, nil
}

// Videos runs videos.list with snippet and statistics for the given ids.
func (c *Client) Videos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return []Video{}, nil
	}

	query := url.Values{}
	query.Set("part", "snippet,statistics")
	query.Set("id", strings.Join(ids, ","))

	body, err := c.doRequest(ctx, "videos", query)
	if err != nil {
		return nil, err
	}

	var response videosResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse videos response: %w", err)
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		video := toVideo(item.ID, item.Snippet)
		video.ViewCount, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		video.LikeCount, _ = strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
		videos = append(videos, video)
	}

	return videos, nil
}

func (c *Client) doRequest(ctx context.Context, resource string, query url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	query.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/youtube/v3/%s?%s", c.baseURL, resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode)
	}

	return body, nil
}

func (c *Client) handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("YouTube API rejected the request - check the query parameters")
	case http.StatusForbidden:
		return fmt.Errorf("YouTube API access denied - check the API key or daily quota")
	case http.StatusTooManyRequests:
		return fmt.Errorf("YouTube API rate limit exceeded - please try again later")
	case http.StatusServiceUnavailable:
		return fmt.Errorf("YouTube API temporarily unavailable - please try again in a few minutes")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("YouTube API server error - please try again later")
	default:
		return fmt.Errorf("YouTube API error (status %d) - please try again", statusCode)
	}
}

func toVideo(id string, s snippet) Video {
	publishedAt, _ := time.Parse(time.RFC3339, s.PublishedAt)

	video := Video{
		ID:           id,
		Title:        s.Title,
		Description:  s.Description,
		Thumbnail:    cmp.Or(s.Thumbnails.High.URL, s.Thumbnails.Default.URL),
		ChannelID:    s.ChannelID,
		ChannelTitle: s.ChannelTitle,
		PublishedAt:  publishedAt,
	}
	if id != "" {
		video.URL = WatchURL(id)
	}
	return video
}

func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}
