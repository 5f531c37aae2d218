package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://rider.example.com)"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	DBPath            string `long:"db-path" env:"DB_PATH" default:"./data/social-rider.db" description:"SQLite database file"`
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed preset files"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	HTTPTimeout       int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Upstream HTTP timeout in seconds"`

	// CORS
	CORSOrigins []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," default:"*" description:"Allowed CORS origins"`

	// Bluesky
	BskyService     string `long:"bsky-service" env:"BSKY_SERVICE" default:"https://bsky.social" description:"Bluesky PDS base URL"`
	BskyIdentifier  string `long:"bsky-identifier" env:"BSKY_IDENTIFIER" description:"Handle or email used to log in at startup (optional)"`
	BskyAppPassword string `long:"bsky-app-password" env:"BSKY_APP_PASSWORD" description:"App password used to log in at startup (optional)"`

	// YouTube
	YouTubeAPIKey  string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API v3 key"`
	YouTubeBaseURL string `long:"youtube-base-url" env:"YOUTUBE_BASE_URL" default:"https://www.googleapis.com" description:"YouTube Data API host"`

	// OpenAI
	OpenAIAPIKey        string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key (optional, insights are skipped without it)"`
	OpenAIBaseURL       string `long:"openai-base-url" env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" description:"OpenAI compatible API base URL"`
	OpenAIModel         string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-3.5-turbo" description:"Model used for video insights"`
	OpenAIAnalysisModel string `long:"openai-analysis-model" env:"OPENAI_ANALYSIS_MODEL" default:"gpt-4-turbo-preview" description:"Model used for interaction analysis"`

	// Redis
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the response cache (optional)"`
	RedisCacheTTL int    `long:"redis-cache-ttl" env:"REDIS_CACHE_TTL" default:"900" description:"Response cache TTL in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Social Rider/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for engagement sampling (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads .env when present, then flags and environment.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses the given arguments and the environment. It returns nil
// without error when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		APIAccessKey:        raw.APIAccessKey,
		CORSOrigins:         raw.CORSOrigins,
		DBPath:              raw.DBPath,
		FeedsDir:            raw.FeedsDir,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   seconds(raw.SchedulerInterval, 300),
		HTTPTimeout:         seconds(raw.HTTPTimeout, 30),
		BskyService:         raw.BskyService,
		BskyIdentifier:      raw.BskyIdentifier,
		BskyAppPassword:     raw.BskyAppPassword,
		YouTubeAPIKey:       raw.YouTubeAPIKey,
		YouTubeBaseURL:      raw.YouTubeBaseURL,
		OpenAIAPIKey:        raw.OpenAIAPIKey,
		OpenAIBaseURL:       raw.OpenAIBaseURL,
		OpenAIModel:         raw.OpenAIModel,
		OpenAIAnalysisModel: raw.OpenAIAnalysisModel,
		RedisAddr:           raw.RedisAddr,
		RedisCacheTTL:       seconds(raw.RedisCacheTTL, 900),
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Location:            time.UTC,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if loc, err := loadLocation(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using UTC: %v\n", cfg.Timezone, err)
	} else {
		cfg.Location = loc
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
