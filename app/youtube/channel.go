package youtube

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const defaultFeedBaseURL = "https://www.youtube.com"

// ChannelFeed reads the public uploads feed of a channel. No API key is
// needed.
func (c *Client) ChannelFeed(ctx context.Context, channelID string) ([]Video, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}

	endpoint := fmt.Sprintf("%s/feeds/videos.xml?channel_id=%s", c.feedBaseURL, url.QueryEscape(channelID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode)
	}

	return ParseChannelFeed(data)
}

// ParseChannelFeed turns a channel Atom feed into videos, reading the yt and
// media extensions for ids, descriptions, thumbnails and view counts.
func ParseChannelFeed(data []byte) ([]Video, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	videos := make([]Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := extensionValue(item.Extensions, "yt", "videoId")
		if id == "" {
			id = strings.TrimPrefix(item.GUID, "yt:video:")
		}
		if id == "" {
			continue
		}

		video := Video{
			ID:           id,
			Title:        item.Title,
			ChannelID:    extensionValue(item.Extensions, "yt", "channelId"),
			ChannelTitle: feed.Title,
			URL:          WatchURL(id),
		}
		if item.Author != nil && item.Author.Name != "" {
			video.ChannelTitle = item.Author.Name
		}
		if item.PublishedParsed != nil {
			video.PublishedAt = *item.PublishedParsed
		}

		if group := firstExtension(item.Extensions["media"], "group"); group != nil {
			if description := firstExtension(group.Children, "description"); description != nil {
				video.Description = description.Value
			}
			if thumbnail := firstExtension(group.Children, "thumbnail"); thumbnail != nil {
				video.Thumbnail = thumbnail.Attrs["url"]
			}
			if community := firstExtension(group.Children, "community"); community != nil {
				if stats := firstExtension(community.Children, "statistics"); stats != nil {
					video.ViewCount, _ = strconv.ParseInt(stats.Attrs["views"], 10, 64)
				}
				if rating := firstExtension(community.Children, "starRating"); rating != nil {
					video.LikeCount, _ = strconv.ParseInt(rating.Attrs["count"], 10, 64)
				}
			}
		}

		videos = append(videos, video)
	}

	return videos, nil
}

func extensionValue(extensions ext.Extensions, space, name string) string {
	if e := firstExtension(extensions[space], name); e != nil {
		return strings.TrimSpace(e.Value)
	}
	return ""
}

func firstExtension(extensions map[string][]ext.Extension, name string) *ext.Extension {
	values := extensions[name]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
