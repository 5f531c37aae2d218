// Package preferences holds the user preference record, the interaction log
// types and the engagement sampling that feeds back into the record.
package preferences

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidApproach = errors.New("invalid preferred approach")
	ErrInvalidAction   = errors.New("invalid interaction action")
)

var validApproaches = map[Approach]bool{
	ApproachGentle:   true,
	ApproachDirect:   true,
	ApproachHumorous: true,
}

var validActions = map[Action]bool{
	ActionLike:       true,
	ActionRepost:     true,
	ActionReply:      true,
	ActionView:       true,
	ActionHide:       true,
	ActionScrollPast: true,
}

func Defaults() UserPreferences {
	return UserPreferences{
		OutOfEchoChamber: false,
		ContentTypes:     []string{"educational", "entertainment", "news", "mindfulness", "motivation", "self-improvement"},
		CustomPrompts: []AlgorithmPrompt{
			{
				Name:   "Diverse Perspectives",
				Prompt: "Find content that presents different viewpoints on the topic",
				Active: false,
			},
			{
				Name:   "Deep Analysis",
				Prompt: "Prioritize content with in-depth analysis and expert insights",
				Active: false,
			},
		},
		WellnessProfile: WellnessProfile{
			FocusIssues: []string{},
			ContentPreferences: ContentNeeds{
				PreferredApproach: ApproachGentle,
			},
		},
	}
}

// Normalize fills nil lists and a missing approach so the record always
// serializes with every field present.
func Normalize(prefs UserPreferences) UserPreferences {
	if prefs.ContentTypes == nil {
		prefs.ContentTypes = []string{}
	}
	if prefs.CustomPrompts == nil {
		prefs.CustomPrompts = []AlgorithmPrompt{}
	}
	if prefs.WellnessProfile.FocusIssues == nil {
		prefs.WellnessProfile.FocusIssues = []string{}
	}
	if prefs.WellnessProfile.ContentPreferences.PreferredApproach == "" {
		prefs.WellnessProfile.ContentPreferences.PreferredApproach = ApproachGentle
	}
	return prefs
}

func Validate(prefs UserPreferences) error {
	approach := prefs.WellnessProfile.ContentPreferences.PreferredApproach
	if approach != "" && !validApproaches[approach] {
		return fmt.Errorf("%w: %q", ErrInvalidApproach, approach)
	}
	return nil
}

// Merge applies a partial update. Top-level fields replace; the wellness
// profile and its nested blocks merge field by field.
func Merge(current UserPreferences, patch Patch) (UserPreferences, error) {
	merged := current

	if patch.OutOfEchoChamber != nil {
		merged.OutOfEchoChamber = *patch.OutOfEchoChamber
	}
	if patch.ContentTypes != nil {
		merged.ContentTypes = slices.Clone(*patch.ContentTypes)
	}
	if patch.CustomPrompts != nil {
		merged.CustomPrompts = slices.Clone(*patch.CustomPrompts)
	}

	if wp := patch.WellnessProfile; wp != nil {
		if wp.FocusIssues != nil {
			merged.WellnessProfile.FocusIssues = slices.Clone(*wp.FocusIssues)
		}

		if ep := wp.EngagementPatterns; ep != nil {
			patterns := &merged.WellnessProfile.EngagementPatterns
			if ep.TimeSpent != nil {
				patterns.TimeSpent = *ep.TimeSpent
			}
			if ep.SessionFrequency != nil {
				patterns.SessionFrequency = *ep.SessionFrequency
			}
			if ep.LateNightUsage != nil {
				patterns.LateNightUsage = *ep.LateNightUsage
			}
			if ep.RapidScrolling != nil {
				patterns.RapidScrolling = *ep.RapidScrolling
			}
		}

		if cp := wp.ContentPreferences; cp != nil {
			needs := &merged.WellnessProfile.ContentPreferences
			if cp.NeedsMotivational != nil {
				needs.NeedsMotivational = *cp.NeedsMotivational
			}
			if cp.NeedsMindfulness != nil {
				needs.NeedsMindfulness = *cp.NeedsMindfulness
			}
			if cp.NeedsProductivity != nil {
				needs.NeedsProductivity = *cp.NeedsProductivity
			}
			if cp.PreferredApproach != nil {
				if !validApproaches[*cp.PreferredApproach] {
					return current, fmt.Errorf("%w: %q", ErrInvalidApproach, *cp.PreferredApproach)
				}
				needs.PreferredApproach = *cp.PreferredApproach
			}
		}
	}

	return merged, nil
}

// ActivePrompts returns the rules flagged active, in stored order.
func ActivePrompts(prefs UserPreferences) []AlgorithmPrompt {
	active := make([]AlgorithmPrompt, 0, len(prefs.CustomPrompts))
	for _, prompt := range prefs.CustomPrompts {
		if prompt.Active {
			active = append(active, prompt)
		}
	}
	return active
}

func ValidateInteraction(interaction Interaction) error {
	if interaction.PostID == "" {
		return errors.New("postId is required")
	}
	if !validActions[interaction.Action] {
		return fmt.Errorf("%w: %q", ErrInvalidAction, interaction.Action)
	}
	if interaction.Duration != nil && *interaction.Duration < 0 {
		return errors.New("duration must be non-negative")
	}
	return nil
}

// DefaultContentPreferences is used when no analysis service is configured.
func DefaultContentPreferences() ContentPreferences {
	return ContentPreferences{
		Topics: TopicPreferences{Interested: []string{}, Disinterested: []string{}},
		ContentTypes: WeightedPreferences{
			Preferred:  []string{"text", "image", "video"},
			Engagement: map[string]float64{"text": 0, "image": 0, "video": 0},
		},
		Sentiment: WeightedPreferences{
			Preferred:  []string{"neutral"},
			Engagement: map[string]float64{"positive": 0, "neutral": 0, "negative": 0},
		},
	}
}

// EmptyContentPreferences is returned when analysis fails.
func EmptyContentPreferences() ContentPreferences {
	return ContentPreferences{
		Topics: TopicPreferences{Interested: []string{}, Disinterested: []string{}},
		ContentTypes: WeightedPreferences{
			Preferred:  []string{},
			Engagement: map[string]float64{"text": 0, "image": 0, "video": 0},
		},
		Sentiment: WeightedPreferences{
			Preferred:  []string{},
			Engagement: map[string]float64{"positive": 0, "neutral": 0, "negative": 0},
		},
	}
}
