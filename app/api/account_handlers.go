package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/social-rider/app/bsky"
	"github.com/lysyi3m/social-rider/app/preferences"
)

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type sessionResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	DID      string `json:"did,omitempty"`
	Handle   string `json:"handle,omitempty"`
}

func (h *Handler) GetSession(c *gin.Context) {
	session := h.Session.Session()
	if session == nil {
		c.JSON(http.StatusOK, sessionResponse{})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{LoggedIn: true, DID: session.DID, Handle: session.Handle})
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and password are required"})
		return
	}

	session, err := h.Session.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, bsky.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		case errors.Is(err, bsky.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts. Please try again later."})
		default:
			slog.Error("Login failed", "identifier", req.Identifier, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	c.JSON(http.StatusOK, sessionResponse{LoggedIn: true, DID: session.DID, Handle: session.Handle})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.Session.ClearSession(c.Request.Context()); err != nil {
		slog.Error("Failed to clear session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.Preferences.Load(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "load_preferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) ReplacePreferences(c *gin.Context) {
	var prefs preferences.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences body"})
		return
	}

	saved, err := h.Preferences.Replace(c.Request.Context(), prefs)
	h.respondPreferences(c, saved, err)
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var patch preferences.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences body"})
		return
	}

	saved, err := h.Preferences.Update(c.Request.Context(), patch)
	h.respondPreferences(c, saved, err)
}

func (h *Handler) respondPreferences(c *gin.Context, prefs preferences.UserPreferences, err error) {
	if err != nil {
		if errors.Is(err, preferences.ErrInvalidApproach) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Database error", "operation", "save_preferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) GetActivePrompts(c *gin.Context) {
	prompts, err := h.Preferences.ActivePrompts(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "active_prompts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activePrompts": prompts})
}

func (h *Handler) AnalyzePreferences(c *gin.Context) {
	ctx := c.Request.Context()

	interactions, err := h.Interactions.GetInteractions(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_interactions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load interactions"})
		return
	}

	c.JSON(http.StatusOK, h.Analyzer.AnalyzePreferences(ctx, interactions))
}

func (h *Handler) GetInteractions(c *gin.Context) {
	interactions, err := h.Interactions.GetInteractions(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_interactions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load interactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interactions": interactions,
		"total":        len(interactions),
	})
}

func (h *Handler) CreateInteraction(c *gin.Context) {
	var interaction preferences.Interaction
	if err := c.ShouldBindJSON(&interaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interaction body"})
		return
	}

	if interaction.Timestamp == 0 {
		interaction.Timestamp = time.Now().UnixMilli()
	}

	if err := preferences.ValidateInteraction(interaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.Interactions.AddInteraction(c.Request.Context(), interaction)
	if err != nil {
		slog.Error("Database error", "operation", "add_interaction", "post", interaction.PostID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store interaction"})
		return
	}

	c.JSON(http.StatusCreated, stored)
}
