package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestID())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Keys["request_id"],
			)
		},
	}))
	r.Use(gin.Recovery())

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// WithCORS wraps the engine so browser clients on the given origins can call
// the API.
func WithCORS(handler http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(handler)
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/feeds/:name", handler.GetPresetFeed)

	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		slog.Info("API authentication enabled")
	} else {
		slog.Warn("API authentication disabled (API_ACCESS_KEY not set)")
	}

	api.GET("/posts", handler.GetPosts)
	api.GET("/thread", handler.GetThread)
	api.GET("/presets", handler.GetPresets)

	api.GET("/videos", handler.GetVideos)
	api.GET("/channels/:id/videos", handler.GetChannelVideos)

	api.GET("/session", handler.GetSession)
	api.POST("/session", handler.CreateSession)
	api.DELETE("/session", handler.DeleteSession)

	api.GET("/preferences", handler.GetPreferences)
	api.PUT("/preferences", handler.ReplacePreferences)
	api.PATCH("/preferences", handler.UpdatePreferences)
	api.GET("/preferences/active-prompts", handler.GetActivePrompts)
	api.POST("/preferences/analyze", handler.AnalyzePreferences)

	api.GET("/interactions", handler.GetInteractions)
	api.POST("/interactions", handler.CreateInteraction)

	api.GET("/preview", handler.GetPreview)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Social Rider",
			"version":     handler.Version,
			"description": "Post aggregation and short video recommendations with a thin AI curation layer",
			"endpoints": map[string]string{
				"posts":       "/api/posts",
				"videos":      "/api/videos",
				"thread":      "/api/thread?uri=<at-uri>",
				"presets":     "/api/presets",
				"rss":         "/feeds/<preset>",
				"session":     "/api/session",
				"preferences": "/api/preferences",
				"health":      "/health",
			},
			"api_status": map[string]any{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}
