package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const channelFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <title>Calm Channel</title>
 <yt:channelId>UCcalm</yt:channelId>
 <entry>
  <id>yt:video:abc123</id>
  <yt:videoId>abc123</yt:videoId>
  <yt:channelId>UCcalm</yt:channelId>
  <title>Five minute breathing</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
  <author><name>Calm Channel</name></author>
  <published>2024-02-01T10:00:00+00:00</published>
  <media:group>
   <media:title>Five minute breathing</media:title>
   <media:thumbnail url="https://i.ytimg.com/vi/abc123/hqdefault.jpg" width="480" height="360"/>
   <media:description>Slow down and breathe.</media:description>
   <media:community>
    <media:starRating count="42" average="5.00" min="1" max="5"/>
    <media:statistics views="1234"/>
   </media:community>
  </media:group>
 </entry>
 <entry>
  <id>yt:video:def456</id>
  <title>Second</title>
  <published>2024-01-01T10:00:00+00:00</published>
 </entry>
</feed>`

func TestParseChannelFeed(t *testing.T) {
	videos, err := ParseChannelFeed([]byte(channelFeedXML))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(videos))
	}

	first := videos[0]
	if first.ID != "abc123" {
		t.Errorf("Expected id abc123, got %s", first.ID)
	}
	if first.ChannelID != "UCcalm" {
		t.Errorf("Expected channel id UCcalm, got %s", first.ChannelID)
	}
	if first.ChannelTitle != "Calm Channel" {
		t.Errorf("Expected channel title 'Calm Channel', got %s", first.ChannelTitle)
	}
	if first.Description != "Slow down and breathe." {
		t.Errorf("Unexpected description %q", first.Description)
	}
	if first.Thumbnail != "https://i.ytimg.com/vi/abc123/hqdefault.jpg" {
		t.Errorf("Unexpected thumbnail %q", first.Thumbnail)
	}
	if first.ViewCount != 1234 || first.LikeCount != 42 {
		t.Errorf("Expected 1234 views and 42 ratings, got %d/%d", first.ViewCount, first.LikeCount)
	}
	if first.PublishedAt.IsZero() {
		t.Error("Expected published date to be parsed")
	}

	if videos[1].ID != "def456" {
		t.Errorf("Expected id from entry id fallback, got %s", videos[1].ID)
	}
}

func TestParseChannelFeed_Invalid(t *testing.T) {
	if _, err := ParseChannelFeed([]byte("not xml at all")); err == nil {
		t.Error("Expected parse error")
	}
}

func TestClient_ChannelFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feeds/videos.xml" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("channel_id"); got == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(channelFeedXML))
	}))
	defer server.Close()

	client := NewClient("", WithFeedBaseURL(server.URL))

	videos, err := client.ChannelFeed(context.Background(), "UCcalm")
	if err != nil {
		t.Fatalf("ChannelFeed failed: %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("Expected 2 videos, got %d", len(videos))
	}

	if _, err := client.ChannelFeed(context.Background(), "missing"); err == nil {
		t.Error("Expected error for unknown channel")
	}
	if _, err := client.ChannelFeed(context.Background(), ""); err == nil {
		t.Error("Expected error for empty channel id")
	}
}
