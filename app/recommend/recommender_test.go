package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lysyi3m/social-rider/app/ai"
	"github.com/lysyi3m/social-rider/app/preferences"
	"github.com/lysyi3m/social-rider/app/youtube"
)

type fakeVideos struct {
	configured bool
	search     *youtube.SearchResult
	searchErr  error
	details    []youtube.Video
	detailsErr error

	searchParams youtube.SearchParams
	detailIDs    []string
	detailCalls  int
}

func (f *fakeVideos) Configured() bool {
	return f.configured
}

func (f *fakeVideos) Search(ctx context.Context, params youtube.SearchParams) (*youtube.SearchResult, error) {
	f.searchParams = params
	return f.search, f.searchErr
}

func (f *fakeVideos) Videos(ctx context.Context, ids []string) ([]youtube.Video, error) {
	f.detailCalls++
	f.detailIDs = ids
	return f.details, f.detailsErr
}

type fakeCompleter struct {
	content string
	err     error
	request ai.Request
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, request ai.Request) (string, error) {
	f.calls++
	f.request = request
	return f.content, f.err
}

func (f *fakeCompleter) prompt() string {
	if len(f.request.Messages) == 0 {
		return ""
	}
	return f.request.Messages[0].Content
}

func TestRecommender_Recommend(t *testing.T) {
	videos := &fakeVideos{
		configured: true,
		search: &youtube.SearchResult{
			NextPageToken: "NEXT",
			Items:         []youtube.Video{{ID: "a"}, {ID: ""}, {ID: "b"}},
		},
		details: []youtube.Video{
			{ID: "a", Description: "Daily motivation for busy mornings", ViewCount: 10},
			{ID: "b", Description: ""},
		},
	}
	completer := &fakeCompleter{content: "Good mix."}

	response, err := NewRecommender(videos, completer, "").Recommend(context.Background(), Request{
		Topic:     "habits",
		PageToken: "PAGE",
	})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	params := videos.searchParams
	if params.Query != "habits" || params.PageToken != "PAGE" || params.MaxResults != 10 ||
		params.Type != "video" || params.VideoDuration != "short" {
		t.Errorf("Unexpected search params %+v", params)
	}
	if strings.Join(videos.detailIDs, ",") != "a,b" {
		t.Errorf("Expected detail lookup for valid ids [a b], got %v", videos.detailIDs)
	}

	if len(response.Videos) != 2 || response.Videos[0].ViewCount != 10 {
		t.Errorf("Expected detailed videos, got %+v", response.Videos)
	}
	if response.NextPageToken != "NEXT" {
		t.Errorf("Expected next page token NEXT, got %s", response.NextPageToken)
	}
	if response.AIInsights != "Good mix." {
		t.Errorf("Expected insights, got %q", response.AIInsights)
	}

	if completer.request.Model != DefaultModel {
		t.Errorf("Expected model %s, got %s", DefaultModel, completer.request.Model)
	}
	if completer.request.Messages[0].Role != ai.RoleSystem {
		t.Errorf("Expected system role, got %s", completer.request.Messages[0].Role)
	}
	if !strings.Contains(completer.prompt(), motivationBlock) {
		t.Error("Expected motivation block to be triggered")
	}
}

func TestRecommender_MissingCredentials(t *testing.T) {
	videos := &fakeVideos{configured: false}
	completer := &fakeCompleter{}

	_, err := NewRecommender(videos, completer, "").Recommend(context.Background(), Request{Topic: "x"})

	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
	if videos.searchParams.Query != "" || completer.calls != 0 {
		t.Error("Expected no upstream calls")
	}
}

func TestRecommender_SearchFailureServesPlaceholders(t *testing.T) {
	videos := &fakeVideos{configured: true, searchErr: errors.New("quota exceeded")}
	completer := &fakeCompleter{content: "placeholder insight"}

	response, err := NewRecommender(videos, completer, "").Recommend(context.Background(), Request{Topic: "stoicism"})
	if err != nil {
		t.Fatalf("Expected degraded success, got %v", err)
	}

	if len(response.Videos) != PlaceholderCount {
		t.Fatalf("Expected %d placeholders, got %d", PlaceholderCount, len(response.Videos))
	}
	for _, video := range response.Videos {
		if !strings.HasPrefix(video.ID, PlaceholderIDPrefix) {
			t.Errorf("Expected placeholder id, got %s", video.ID)
		}
		if !strings.Contains(video.Description, "stoicism") {
			t.Errorf("Expected topic in description, got %q", video.Description)
		}
		if video.Thumbnail == "" {
			t.Error("Expected a thumbnail")
		}
	}
	if videos.detailCalls != 0 {
		t.Errorf("Expected detail call to be skipped, got %d calls", videos.detailCalls)
	}
	if response.NextPageToken != "" {
		t.Errorf("Expected no next page token, got %s", response.NextPageToken)
	}
	if response.AIInsights != "placeholder insight" {
		t.Errorf("Expected completion over placeholders, got %q", response.AIInsights)
	}
}

func TestRecommender_DetailFailureReusesSearchItems(t *testing.T) {
	for _, tt := range []struct {
		name    string
		details []youtube.Video
		err     error
	}{
		{"error", nil, errors.New("boom")},
		{"empty", []youtube.Video{}, nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			videos := &fakeVideos{
				configured: true,
				search: &youtube.SearchResult{Items: []youtube.Video{
					{ID: "a", Description: "first"},
					{ID: "", Description: "a channel"},
				}},
				details:    tt.details,
				detailsErr: tt.err,
			}
			completer := &fakeCompleter{}

			response, err := NewRecommender(videos, completer, "").Recommend(context.Background(), Request{})
			if err != nil {
				t.Fatalf("Recommend failed: %v", err)
			}

			if len(response.Videos) != 1 || response.Videos[0].ID != "a" {
				t.Errorf("Expected search items with valid ids, got %+v", response.Videos)
			}
			if !strings.Contains(completer.prompt(), "first") {
				t.Error("Expected search descriptions in prompt")
			}
		})
	}
}

func TestRecommender_NotFound(t *testing.T) {
	t.Run("no items", func(t *testing.T) {
		videos := &fakeVideos{configured: true, search: &youtube.SearchResult{}}
		_, err := NewRecommender(videos, &fakeCompleter{}, "").Recommend(context.Background(), Request{})
		if !errors.Is(err, ErrNoVideos) {
			t.Errorf("Expected ErrNoVideos, got %v", err)
		}
	})

	t.Run("no valid ids", func(t *testing.T) {
		videos := &fakeVideos{configured: true, search: &youtube.SearchResult{Items: []youtube.Video{{Title: "channel"}}}}
		_, err := NewRecommender(videos, &fakeCompleter{}, "").Recommend(context.Background(), Request{})
		if !errors.Is(err, ErrNoValidIDs) {
			t.Errorf("Expected ErrNoValidIDs, got %v", err)
		}
		if videos.detailCalls != 0 {
			t.Error("Expected no detail lookup")
		}
	})
}

func TestRecommender_CompletionFailure(t *testing.T) {
	videos := &fakeVideos{
		configured: true,
		search:     &youtube.SearchResult{Items: []youtube.Video{{ID: "a"}}},
		details:    []youtube.Video{{ID: "a", Description: "d"}},
	}
	completer := &fakeCompleter{err: ai.ErrMissingAPIKey}

	response, err := NewRecommender(videos, completer, "gpt-4o-mini").Recommend(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Expected completion failure to be tolerated, got %v", err)
	}

	if response.AIInsights != "" {
		t.Errorf("Expected empty insights, got %q", response.AIInsights)
	}
	if len(response.Videos) != 1 {
		t.Errorf("Expected videos to be returned, got %d", len(response.Videos))
	}
	if completer.request.Model != "gpt-4o-mini" {
		t.Errorf("Expected configured model, got %s", completer.request.Model)
	}
}

func TestRecommender_PreferencesReachPrompt(t *testing.T) {
	videos := &fakeVideos{
		configured: true,
		search:     &youtube.SearchResult{Items: []youtube.Video{{ID: "a"}}},
		details:    []youtube.Video{{ID: "a", Description: "plain"}},
	}
	completer := &fakeCompleter{}

	_, err := NewRecommender(videos, completer, "").Recommend(context.Background(), Request{
		OutOfEchoChamber: true,
		ContentTypes:     []string{"news"},
		Rules:            []preferences.AlgorithmPrompt{{Name: "Deep", Prompt: "Go deep", Active: true}},
	})
	if err != nil {
		t.Fatal(err)
	}

	prompt := completer.prompt()
	for _, expected := range []string{preferencesHeader, echoChamberLine, "- Focus on these content types: news.", "- Go deep"} {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", expected, prompt)
		}
	}
}
