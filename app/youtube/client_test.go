package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/search" {
			t.Errorf("Expected /youtube/v3/search, got %s", r.URL.Path)
		}

		q := r.URL.Query()
		expected := map[string]string{
			"part":          "snippet",
			"q":             "mindfulness",
			"maxResults":    "10",
			"type":          "video",
			"videoDuration": "short",
			"pageToken":     "PAGE2",
			"key":           "test-key",
		}
		for name, value := range expected {
			if got := q.Get(name); got != value {
				t.Errorf("Expected %s=%q, got %q", name, value, got)
			}
		}

		w.Write([]byte(`{
			"nextPageToken": "PAGE3",
			"items": [
				{"id": {"videoId": "vid1"}, "snippet": {"title": "Breathe", "channelTitle": "Calm", "publishedAt": "2024-01-01T00:00:00Z",
				 "thumbnails": {"default": {"url": "https://i.ytimg.com/vi/vid1/default.jpg"}, "high": {"url": "https://i.ytimg.com/vi/vid1/hq.jpg"}}}},
				{"id": {"channelId": "UC1"}, "snippet": {"title": "A channel"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	result, err := client.Search(context.Background(), SearchParams{
		Query:         "mindfulness",
		PageToken:     "PAGE2",
		MaxResults:    10,
		Type:          "video",
		VideoDuration: "short",
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.NextPageToken != "PAGE3" {
		t.Errorf("Expected next page token PAGE3, got %s", result.NextPageToken)
	}
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}

	first := result.Items[0]
	if first.ID != "vid1" || first.Title != "Breathe" || first.ChannelTitle != "Calm" {
		t.Errorf("Unexpected first item %+v", first)
	}
	if first.Thumbnail != "https://i.ytimg.com/vi/vid1/hq.jpg" {
		t.Errorf("Expected high thumbnail, got %s", first.Thumbnail)
	}
	if first.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Unexpected watch URL %s", first.URL)
	}
	if first.PublishedAt.IsZero() {
		t.Error("Expected publishedAt to be parsed")
	}

	if result.Items[1].ID != "" || result.Items[1].URL != "" {
		t.Errorf("Expected non-video hit to have no id, got %+v", result.Items[1])
	}
}

func TestClient_Videos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/videos" {
			t.Errorf("Expected /youtube/v3/videos, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "vid1,vid2" {
			t.Errorf("Expected id=vid1,vid2, got %q", got)
		}
		if got := r.URL.Query().Get("part"); got != "snippet,statistics" {
			t.Errorf("Expected part=snippet,statistics, got %q", got)
		}

		w.Write([]byte(`{"items": [
			{"id": "vid1", "snippet": {"title": "One", "description": "first"}, "statistics": {"viewCount": "1200", "likeCount": "34"}},
			{"id": "vid2", "snippet": {"title": "Two"}, "statistics": {}}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	videos, err := client.Videos(context.Background(), []string{"vid1", "vid2"})
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(videos))
	}
	if videos[0].ViewCount != 1200 || videos[0].LikeCount != 34 {
		t.Errorf("Expected statistics 1200/34, got %d/%d", videos[0].ViewCount, videos[0].LikeCount)
	}
	if videos[0].Description != "first" {
		t.Errorf("Expected description 'first', got %q", videos[0].Description)
	}
	if videos[1].ViewCount != 0 {
		t.Errorf("Expected missing statistics to be zero, got %d", videos[1].ViewCount)
	}
}

func TestVideo_JSONFields(t *testing.T) {
	data, err := json.Marshal(Video{ID: "vid1", Title: "One", URL: "https://www.youtube.com/watch?v=vid1"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	expected := []string{"id", "title", "description", "thumbnail", "channelTitle", "publishedAt", "viewCount", "likeCount", "url"}
	for _, key := range expected {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected field %q in %s", key, data)
		}
	}
	if len(fields) != len(expected) {
		t.Errorf("Expected %d fields, got %d: %s", len(expected), len(fields), data)
	}
}

func TestClient_VideosEmptyIDs(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://127.0.0.1:0"))

	videos, err := client.Videos(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("Expected no videos, got %d", len(videos))
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := NewClient("")

	if client.Configured() {
		t.Error("Expected client without key to be unconfigured")
	}

	_, err := client.Search(context.Background(), SearchParams{Query: "x"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClient_HandleAPIError(t *testing.T) {
	tests := []struct {
		status   int
		contains string
	}{
		{http.StatusBadRequest, "rejected"},
		{http.StatusForbidden, "quota"},
		{http.StatusTooManyRequests, "rate limit"},
		{http.StatusServiceUnavailable, "temporarily unavailable"},
		{http.StatusBadGateway, "server error"},
		{http.StatusTeapot, "status 418"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("test-key", WithBaseURL(server.URL))
			_, err := client.Search(context.Background(), SearchParams{Query: "x"})
			if err == nil || !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}
