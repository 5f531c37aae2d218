package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/social-rider/app/preferences"
)

const DefaultAnalysisModel = "gpt-4-turbo-preview"

const analysisPrompt = `Analyze these user interactions with social media posts and determine their content preferences. Do not include any personal or identifying information in the analysis.

Interactions:
%s

Provide a structured analysis of:
1. Topics they seem interested in
2. Topics they seem to avoid
3. Preferred content types (text, image, video)
4. Sentiment preferences

Format the response as a JSON object with this shape:
{"topics":{"interested":[],"disinterested":[]},"contentTypes":{"preferred":[],"engagement":{"text":0,"image":0,"video":0}},"sentiment":{"preferred":[],"engagement":{"positive":0,"neutral":0,"negative":0}}}`

// Analyzer derives ContentPreferences from the interaction log.
type Analyzer struct {
	client *Client
	model  string
}

func NewAnalyzer(client *Client, model string) *Analyzer {
	if model == "" {
		model = DefaultAnalysisModel
	}
	return &Analyzer{client: client, model: model}
}

// AnalyzePreferences never fails: without a key it returns the defaults, and
// any request or parse failure yields empty preferences.
func (a *Analyzer) AnalyzePreferences(ctx context.Context, interactions []preferences.Interaction) preferences.ContentPreferences {
	if a.client == nil || !a.client.Configured() {
		slog.Warn("Completion API key is missing, using default content preferences")
		return preferences.DefaultContentPreferences()
	}

	prompt, err := BuildAnalysisPrompt(interactions)
	if err != nil {
		slog.Error("Failed to build analysis prompt", "error", err)
		return preferences.EmptyContentPreferences()
	}

	content, err := a.client.Complete(ctx, Request{
		Model:    a.model,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		JSON:     true,
	})
	if err != nil {
		slog.Error("Failed to analyze preferences", "interactions", len(interactions), "error", err)
		return preferences.EmptyContentPreferences()
	}

	result := preferences.EmptyContentPreferences()
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		slog.Error("Failed to parse preference analysis", "error", err)
		return preferences.EmptyContentPreferences()
	}

	return result
}

// BuildAnalysisPrompt embeds the interactions as indented JSON. Interaction ids
// are left out.
func BuildAnalysisPrompt(interactions []preferences.Interaction) (string, error) {
	stripped := make([]preferences.Interaction, 0, len(interactions))
	for _, interaction := range interactions {
		interaction.ID = ""
		stripped = append(stripped, interaction)
	}

	data, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode interactions: %w", err)
	}

	return fmt.Sprintf(analysisPrompt, data), nil
}
