// Package recommend runs the video pipeline: search, detail lookup and a
// single completion call over the video descriptions.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/social-rider/app/ai"
	"github.com/lysyi3m/social-rider/app/preferences"
	"github.com/lysyi3m/social-rider/app/youtube"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	searchMaxResults    = 10
	searchType          = "video"
	searchVideoDuration = "short"

	PlaceholderCount     = 5
	PlaceholderIDPrefix  = "placeholder-"
	placeholderThumbnail = "https://i.ytimg.com/vi/placeholder/hqdefault.jpg"
)

var (
	ErrNoVideos           = errors.New("no videos found")
	ErrNoValidIDs         = errors.New("no valid video ids found")
	ErrMissingCredentials = errors.New("video search credentials are not configured")
)

type Completer interface {
	Complete(ctx context.Context, request ai.Request) (string, error)
}

type Request struct {
	Topic            string
	PageToken        string
	OutOfEchoChamber bool
	ContentTypes     []string
	Rules            []preferences.AlgorithmPrompt
}

type Response struct {
	Videos        []youtube.Video `json:"videos"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
	AIInsights    string          `json:"aiInsights,omitempty"`
}

type Recommender struct {
	videos    youtube.API
	completer Completer
	model     string
}

func NewRecommender(videos youtube.API, completer Completer, model string) *Recommender {
	if model == "" {
		model = DefaultModel
	}
	return &Recommender{
		videos:    videos,
		completer: completer,
		model:     model,
	}
}

// Recommend runs search, details and completion in sequence. Search failure
// switches to placeholder videos, detail failure reuses the search items and
// completion failure leaves the insights empty.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Response, error) {
	if !r.videos.Configured() {
		return nil, ErrMissingCredentials
	}

	result, err := r.videos.Search(ctx, youtube.SearchParams{
		Query:         req.Topic,
		PageToken:     req.PageToken,
		MaxResults:    searchMaxResults,
		Type:          searchType,
		VideoDuration: searchVideoDuration,
	})
	if err != nil {
		slog.Error("Video search failed, serving placeholders", "topic", req.Topic, "error", err)

		videos := PlaceholderVideos(req.Topic)
		return &Response{
			Videos:     videos,
			AIInsights: r.insights(ctx, req, videos),
		}, nil
	}

	if len(result.Items) == 0 {
		return nil, ErrNoVideos
	}

	searchItems := make([]youtube.Video, 0, len(result.Items))
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID == "" {
			continue
		}
		searchItems = append(searchItems, item)
		ids = append(ids, item.ID)
	}
	if len(ids) == 0 {
		return nil, ErrNoValidIDs
	}

	videos, err := r.videos.Videos(ctx, ids)
	if err != nil {
		slog.Warn("Video details failed, reusing search results", "count", len(ids), "error", err)
		videos = searchItems
	} else if len(videos) == 0 {
		slog.Warn("Video details empty, reusing search results", "count", len(ids))
		videos = searchItems
	}

	return &Response{
		Videos:        videos,
		NextPageToken: result.NextPageToken,
		AIInsights:    r.insights(ctx, req, videos),
	}, nil
}

func (r *Recommender) insights(ctx context.Context, req Request, videos []youtube.Video) string {
	descriptions := make([]string, 0, len(videos))
	for _, video := range videos {
		if video.Description != "" {
			descriptions = append(descriptions, video.Description)
		}
	}

	prompt := BuildPrompt(PromptInput{
		Descriptions:     descriptions,
		OutOfEchoChamber: req.OutOfEchoChamber,
		ContentTypes:     req.ContentTypes,
		Rules:            req.Rules,
	})

	content, err := r.completer.Complete(ctx, ai.Request{
		Model:    r.model,
		Messages: []ai.Message{{Role: ai.RoleSystem, Content: prompt}},
	})
	if err != nil {
		slog.Warn("Completion failed, returning videos without insights", "error", err)
		return ""
	}

	return content
}

// PlaceholderVideos returns the fixed stand-in results served when search is
// unavailable.
func PlaceholderVideos(topic string) []youtube.Video {
	videos := make([]youtube.Video, 0, PlaceholderCount)
	for i := 1; i <= PlaceholderCount; i++ {
		videos = append(videos, youtube.Video{
			ID:           fmt.Sprintf("%s%d", PlaceholderIDPrefix, i),
			Title:        fmt.Sprintf("Sample video %d", i),
			Description:  fmt.Sprintf("A short video about %s. Live results are temporarily unavailable.", topic),
			Thumbnail:    placeholderThumbnail,
			ChannelTitle: "Social Rider",
		})
	}
	return videos
}
