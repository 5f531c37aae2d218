package preferences

type Approach string

const (
	ApproachGentle   Approach = "gentle"
	ApproachDirect   Approach = "direct"
	ApproachHumorous Approach = "humorous"
)

// AlgorithmPrompt is a user-authored ranking rule fed into the video prompt
// while active.
type AlgorithmPrompt struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Active bool   `json:"active"`
}

type EngagementPatterns struct {
	TimeSpent        int  `json:"timeSpent"`
	SessionFrequency int  `json:"sessionFrequency"`
	LateNightUsage   bool `json:"lateNightUsage"`
	RapidScrolling   bool `json:"rapidScrolling"`
}

type ContentNeeds struct {
	NeedsMotivational bool     `json:"needsMotivational"`
	NeedsMindfulness  bool     `json:"needsMindfulness"`
	NeedsProductivity bool     `json:"needsProductivity"`
	PreferredApproach Approach `json:"preferredApproach"`
}

type WellnessProfile struct {
	FocusIssues        []string           `json:"focusIssues"`
	EngagementPatterns EngagementPatterns `json:"engagementPatterns"`
	ContentPreferences ContentNeeds       `json:"contentPreferences"`
}

type UserPreferences struct {
	OutOfEchoChamber bool              `json:"outOfEchoChamber"`
	ContentTypes     []string          `json:"contentTypes"`
	CustomPrompts    []AlgorithmPrompt `json:"customPrompts"`
	WellnessProfile  WellnessProfile   `json:"wellnessProfile"`
}

// Patch types: nil fields are left untouched by Merge.

type EngagementPatch struct {
	TimeSpent        *int  `json:"timeSpent,omitempty"`
	SessionFrequency *int  `json:"sessionFrequency,omitempty"`
	LateNightUsage   *bool `json:"lateNightUsage,omitempty"`
	RapidScrolling   *bool `json:"rapidScrolling,omitempty"`
}

type ContentNeedsPatch struct {
	NeedsMotivational *bool     `json:"needsMotivational,omitempty"`
	NeedsMindfulness  *bool     `json:"needsMindfulness,omitempty"`
	NeedsProductivity *bool     `json:"needsProductivity,omitempty"`
	PreferredApproach *Approach `json:"preferredApproach,omitempty"`
}

type WellnessPatch struct {
	FocusIssues        *[]string          `json:"focusIssues,omitempty"`
	EngagementPatterns *EngagementPatch   `json:"engagementPatterns,omitempty"`
	ContentPreferences *ContentNeedsPatch `json:"contentPreferences,omitempty"`
}

type Patch struct {
	OutOfEchoChamber *bool              `json:"outOfEchoChamber,omitempty"`
	ContentTypes     *[]string          `json:"contentTypes,omitempty"`
	CustomPrompts    *[]AlgorithmPrompt `json:"customPrompts,omitempty"`
	WellnessProfile  *WellnessPatch     `json:"wellnessProfile,omitempty"`
}

// Interaction log types

type Action string

const (
	ActionLike       Action = "like"
	ActionRepost     Action = "repost"
	ActionReply      Action = "reply"
	ActionView       Action = "view"
	ActionHide       Action = "hide"
	ActionScrollPast Action = "scroll_past"
)

// PostSnapshot is the part of a post kept alongside an interaction for
// preference analysis.
type PostSnapshot struct {
	Text        string   `json:"text"`
	Topics      []string `json:"topics,omitempty"`
	ContentType []string `json:"contentType,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty"`
}

// Interaction is one user action on a post. Timestamp is unix milliseconds
// and Duration is the view time in milliseconds.
type Interaction struct {
	ID        string        `json:"id,omitempty"`
	PostID    string        `json:"postId"`
	Action    Action        `json:"action"`
	Duration  *int64        `json:"duration,omitempty"`
	Timestamp int64         `json:"timestamp"`
	Content   *PostSnapshot `json:"content,omitempty"`
}

// AI-derived preference summary

type TopicPreferences struct {
	Interested    []string `json:"interested"`
	Disinterested []string `json:"disinterested"`
}

type WeightedPreferences struct {
	Preferred  []string           `json:"preferred"`
	Engagement map[string]float64 `json:"engagement"`
}

type ContentPreferences struct {
	Topics       TopicPreferences    `json:"topics"`
	ContentTypes WeightedPreferences `json:"contentTypes"`
	Sentiment    WeightedPreferences `json:"sentiment"`
}
