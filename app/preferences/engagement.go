package preferences

import (
	"sort"
	"time"
)

const (
	SampleWindow         = 24 * time.Hour
	SessionGap           = 30 * time.Minute
	RapidScrollWindow    = 5 * time.Minute
	RapidScrollThreshold = 20
	lateNightEndHour     = 5
)

// SampleEngagement derives the engagement telemetry from the interaction log.
// Only interactions from the last 24 hours count. Hours are evaluated in loc.
func SampleEngagement(interactions []Interaction, now time.Time, loc *time.Location) EngagementPatterns {
	if loc == nil {
		loc = time.Local
	}

	windowStart := now.Add(-SampleWindow).UnixMilli()
	scrollStart := now.Add(-RapidScrollWindow).UnixMilli()
	nowMs := now.UnixMilli()

	recent := make([]Interaction, 0, len(interactions))
	for _, interaction := range interactions {
		if interaction.Timestamp >= windowStart && interaction.Timestamp <= nowMs {
			recent = append(recent, interaction)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp < recent[j].Timestamp })

	var patterns EngagementPatterns
	var viewedMs int64
	var scrolls int
	var lastTimestamp int64

	for i, interaction := range recent {
		if interaction.Action == ActionView && interaction.Duration != nil {
			viewedMs += *interaction.Duration
		}

		if interaction.Action == ActionScrollPast && interaction.Timestamp >= scrollStart {
			scrolls++
		}

		if time.UnixMilli(interaction.Timestamp).In(loc).Hour() < lateNightEndHour {
			patterns.LateNightUsage = true
		}

		if i == 0 || interaction.Timestamp-lastTimestamp > SessionGap.Milliseconds() {
			patterns.SessionFrequency++
		}
		lastTimestamp = interaction.Timestamp
	}

	patterns.TimeSpent = int(viewedMs / time.Minute.Milliseconds())
	patterns.RapidScrolling = scrolls >= RapidScrollThreshold

	return patterns
}

// Patch wraps sampled patterns as a preference patch.
func (p EngagementPatterns) Patch() Patch {
	return Patch{
		WellnessProfile: &WellnessPatch{
			EngagementPatterns: &EngagementPatch{
				TimeSpent:        &p.TimeSpent,
				SessionFrequency: &p.SessionFrequency,
				LateNightUsage:   &p.LateNightUsage,
				RapidScrolling:   &p.RapidScrolling,
			},
		},
	}
}
