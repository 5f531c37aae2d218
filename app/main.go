package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/social-rider/app/ai"
	"github.com/lysyi3m/social-rider/app/api"
	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/cache"
	"github.com/lysyi3m/social-rider/app/cfg"
	"github.com/lysyi3m/social-rider/app/database"
	"github.com/lysyi3m/social-rider/app/feed"
	"github.com/lysyi3m/social-rider/app/preferences"
	"github.com/lysyi3m/social-rider/app/preview"
	"github.com/lysyi3m/social-rider/app/recommend"
	"github.com/lysyi3m/social-rider/app/tasks"
	"github.com/lysyi3m/social-rider/app/youtube"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	initLogger(appCfg.Debug)

	slog.Info("Starting Social Rider server", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "schema_version", version, "dirty", dirty, "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	settingsRepo := database.NewSettingsRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	interactionRepo := database.NewInteractionRepository(db)

	httpClient := &http.Client{Timeout: appCfg.HTTPTimeout}

	bskyClient := bsky.NewClient(
		bsky.WithBaseURL(appCfg.BskyService),
		bsky.WithSessionStore(sessionRepo),
		bsky.WithHTTPClient(httpClient),
	)
	startSession(bskyClient, appCfg)

	presets := feed.NewPresetCache(appCfg.FeedsDir)
	if err := presets.Run(); err != nil {
		slog.Error("Failed to load feed presets", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed presets loaded", "count", presets.GetPresetCount())

	fetcher := feed.NewFetcher(bskyClient, feed.NewAnnotator(), feed.NewFilterer())

	ytClient := youtube.NewClient(appCfg.YouTubeAPIKey,
		youtube.WithBaseURL(appCfg.YouTubeBaseURL),
		youtube.WithHTTPClient(httpClient),
	)

	var videoAPI youtube.API = ytClient
	var responseCache *cache.Cache
	if appCfg.RedisAddr != "" {
		responseCache, err = cache.NewCache(context.Background(), appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Response cache unavailable, continuing without it", "addr", appCfg.RedisAddr, "error", err)
		} else {
			defer responseCache.Close()
			videoAPI = youtube.NewCachedClient(ytClient, responseCache, appCfg.RedisCacheTTL)
			slog.Info("Response cache enabled", "addr", appCfg.RedisAddr, "ttl", appCfg.RedisCacheTTL)
		}
	}

	aiClient := ai.NewClient(appCfg.OpenAIAPIKey,
		ai.WithBaseURL(appCfg.OpenAIBaseURL),
		ai.WithHTTPClient(httpClient),
	)
	if !aiClient.Configured() {
		slog.Warn("OPENAI_API_KEY not set, AI insights and interaction analysis are disabled")
	}

	prefService := preferences.NewService(settingsRepo)

	scheduler := tasks.NewScheduler(tasks.Dependencies{
		Interactions: interactionRepo,
		Preferences:  prefService,
		Session:      bskyClient,
		Presets:      presets,
		Location:     appCfg.Location,
	}, appCfg.SchedulerInterval, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	deps := api.Dependencies{
		Posts:        fetcher,
		Presets:      presets,
		Videos:       recommend.NewRecommender(videoAPI, aiClient, appCfg.OpenAIModel),
		Channels:     ytClient,
		Session:      bskyClient,
		Preferences:  prefService,
		Interactions: interactionRepo,
		Analyzer:     ai.NewAnalyzer(aiClient, appCfg.OpenAIAnalysisModel),
		Previews:     preview.NewExtractor(preview.NewHTTPClient(appCfg.HTTPTimeout), appCfg.UserAgent),
		DB:           db,
		BaseURL:      publicBaseURL(appCfg),
		Version:      appCfg.Version,
	}
	if responseCache != nil {
		deps.Cache = responseCache
	}

	server := api.NewServer(api.NewHandler(deps), appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.WithCORS(server, appCfg.CORSOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", appCfg.BaseUrl)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func publicBaseURL(appCfg *cfg.Cfg) string {
	if appCfg.BaseUrl != "" {
		return appCfg.BaseUrl
	}
	return "http://localhost:" + appCfg.Port
}

func initLogger(debug bool) {
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// startSession restores the stored session and falls back to the configured
// credentials. Failures leave the service running logged out.
func startSession(client *bsky.Client, appCfg *cfg.Cfg) {
	ctx, cancel := context.WithTimeout(context.Background(), appCfg.HTTPTimeout)
	defer cancel()

	if err := client.Resume(ctx); err != nil {
		slog.Warn("Failed to resume stored session", "error", err)
	}
	if client.LoggedIn() || !appCfg.BskyAutoLogin() {
		return
	}

	session, err := client.Login(ctx, appCfg.BskyIdentifier, appCfg.BskyAppPassword)
	if err != nil {
		slog.Warn("Startup login failed", "identifier", appCfg.BskyIdentifier, "error", err)
		return
	}
	slog.Info("Logged in", "handle", session.Handle)
}
