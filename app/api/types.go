package api

import (
	"context"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/feed"
	"github.com/lysyi3m/social-rider/app/preferences"
	"github.com/lysyi3m/social-rider/app/preview"
	"github.com/lysyi3m/social-rider/app/recommend"
	"github.com/lysyi3m/social-rider/app/youtube"
)

type PostFetcher interface {
	Fetch(ctx context.Context, opts feed.FetchOptions) (*feed.Result, error)
	FetchThread(ctx context.Context, uri string, depth int) []feed.Post
}

type PresetStore interface {
	Resolve(name string, override feed.Options) (feed.Options, error)
	GetPreset(name string) (*feed.Preset, error)
	GetPresets() []*feed.Preset
	GetPresetCount() int
}

type VideoRecommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

type ChannelFeeder interface {
	ChannelFeed(ctx context.Context, channelID string) ([]youtube.Video, error)
}

type SessionManager interface {
	Login(ctx context.Context, identifier, password string) (*bsky.Session, error)
	Session() *bsky.Session
	ClearSession(ctx context.Context) error
}

type PreferenceStore interface {
	Load(ctx context.Context) (preferences.UserPreferences, error)
	Replace(ctx context.Context, prefs preferences.UserPreferences) (preferences.UserPreferences, error)
	Update(ctx context.Context, patch preferences.Patch) (preferences.UserPreferences, error)
	ActivePrompts(ctx context.Context) ([]preferences.AlgorithmPrompt, error)
}

type InteractionStore interface {
	AddInteraction(ctx context.Context, interaction preferences.Interaction) (preferences.Interaction, error)
	GetInteractions(ctx context.Context) ([]preferences.Interaction, error)
}

type PreferenceAnalyzer interface {
	AnalyzePreferences(ctx context.Context, interactions []preferences.Interaction) preferences.ContentPreferences
}

type Previewer interface {
	Fetch(ctx context.Context, rawURL string) (*preview.Preview, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type CacheHealth interface {
	Health(ctx context.Context) map[string]any
}

// Dependencies wires the handler. Cache may be nil. BaseURL is the public
// address used in self links of exported feeds.
type Dependencies struct {
	Posts        PostFetcher
	Presets      PresetStore
	Videos       VideoRecommender
	Channels     ChannelFeeder
	Session      SessionManager
	Preferences  PreferenceStore
	Interactions InteractionStore
	Analyzer     PreferenceAnalyzer
	Previews     Previewer
	DB           Pinger
	Cache        CacheHealth
	BaseURL      string
	Version      string
}

type Handler struct {
	Dependencies
	generator *feed.Generator
}
