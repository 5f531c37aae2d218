package cfg

import "time"

type Cfg struct {
	// Application configuration
	Port              string
	BaseUrl           string
	APIAccessKey      string
	CORSOrigins       []string
	DBPath            string
	FeedsDir          string
	WorkerCount       int
	SchedulerInterval time.Duration
	HTTPTimeout       time.Duration

	// Bluesky
	BskyService     string
	BskyIdentifier  string
	BskyAppPassword string

	// YouTube
	YouTubeAPIKey  string
	YouTubeBaseURL string

	// OpenAI
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAIAnalysisModel string

	// Redis
	RedisAddr     string
	RedisCacheTTL time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}

// BskyAutoLogin reports whether startup credentials are configured.
func (c *Cfg) BskyAutoLogin() bool {
	return c.BskyIdentifier != "" && c.BskyAppPassword != ""
}
