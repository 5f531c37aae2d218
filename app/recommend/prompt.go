package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lysyi3m/social-rider/app/preferences"
)

const (
	personaLine = "You are a thoughtful content curator helping a viewer find short videos that are worth their time."

	motivationBlock = "Some of these videos are about motivation or inspiration. Favor practical, achievable advice over empty hype."
	focusBlock      = "Some of these videos touch on ADHD or focus. Favor clearly structured content that is easy to follow in short bursts."
	mindfulBlock    = "Some of these videos address mindfulness or mental health. Favor calm, supportive content grounded in credible advice."

	preferencesHeader = "User preferences:"
	echoChamberLine   = "- Include diverse perspectives and viewpoints that challenge common assumptions."
	contentTypesLine  = "- Focus on these content types: %s."

	analyzeLine    = "Analyze these videos and rate their diversity of perspective and educational value:"
	noDescriptions = "No video descriptions available for analysis."
)

type PromptInput struct {
	Descriptions     []string
	OutOfEchoChamber bool
	ContentTypes     []string
	Rules            []preferences.AlgorithmPrompt
}

type trigger struct {
	keywords []string
	block    string
}

var triggers = []trigger{
	{[]string{"motivation", "inspiration"}, motivationBlock},
	{[]string{"adhd", "focus"}, focusBlock},
	{[]string{"mindful", "mental health"}, mindfulBlock},
}

// BuildPrompt assembles the curation prompt. Sections are separated by a
// blank line; empty sections are left out.
func BuildPrompt(input PromptInput) string {
	sections := []string{personaLine}

	joined := strings.Join(input.Descriptions, "\n")
	lowered := strings.ToLower(joined)
	for _, t := range triggers {
		for _, keyword := range t.keywords {
			if strings.Contains(lowered, keyword) {
				sections = append(sections, t.block)
				break
			}
		}
	}

	var prefLines []string
	if input.OutOfEchoChamber {
		prefLines = append(prefLines, echoChamberLine)
	}
	if len(input.ContentTypes) > 0 {
		prefLines = append(prefLines, fmt.Sprintf(contentTypesLine, strings.Join(input.ContentTypes, ", ")))
	}
	for _, rule := range input.Rules {
		if rule.Active && rule.Prompt != "" {
			prefLines = append(prefLines, "- "+rule.Prompt)
		}
	}
	if len(prefLines) > 0 {
		sections = append(sections, preferencesHeader+"\n"+strings.Join(prefLines, "\n"))
	}

	if len(input.Descriptions) > 0 {
		sections = append(sections, analyzeLine+"\n"+joined)
	} else {
		sections = append(sections, noDescriptions)
	}

	return strings.Join(sections, "\n\n")
}

// ParseRules decodes a JSON list of rules and keeps the active ones.
// Malformed input yields an empty list.
func ParseRules(raw string) []preferences.AlgorithmPrompt {
	rules := make([]preferences.AlgorithmPrompt, 0)
	if strings.TrimSpace(raw) == "" {
		return rules
	}

	var decoded []preferences.AlgorithmPrompt
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return rules
	}

	for _, rule := range decoded {
		if rule.Active {
			rules = append(rules, rule)
		}
	}
	return rules
}
