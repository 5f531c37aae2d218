package feed

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/lysyi3m/social-rider/app/bsky"
)

var (
	positiveWords = []string{"love", "great", "awesome", "amazing", "good", "happy", "❤️", "🎉", "😊"}
	negativeWords = []string{"hate", "bad", "terrible", "awful", "sad", "angry", "😠", "😢", "💔"}

	hashtagPattern     = regexp.MustCompile(`#[\w-]+`)
	capitalizedPattern = regexp.MustCompile(`^[A-Z][a-z]{2,}`)
)

type Annotator struct{}

func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Run converts one timeline entry into an annotated Post.
func (a *Annotator) Run(item bsky.FeedViewPost) Post {
	isRepost := item.Reason != nil && strings.Contains(item.Reason.Type, "repost")
	return a.annotate(item.Post, isPresent(item.Reply), isRepost)
}

// RunThreadPost annotates a post seen inside a thread view, where the reply
// reference lives on the record itself.
func (a *Annotator) RunThreadPost(view bsky.PostView) Post {
	return a.annotate(view, isPresent(view.Record.Reply), false)
}

func (a *Annotator) annotate(view bsky.PostView, isReply, isRepost bool) Post {
	record := view.Record

	indexedAt, _ := time.Parse(time.RFC3339, view.IndexedAt)

	return Post{
		URI:         view.URI,
		CID:         view.CID,
		Author:      view.Author,
		Record:      record,
		ReplyCount:  view.ReplyCount,
		RepostCount: view.RepostCount,
		LikeCount:   view.LikeCount,
		IndexedAt:   indexedAt,
		IsReply:     isReply,
		IsRepost:    isRepost,
		IsQuote:     record.Embed != nil && strings.Contains(record.Embed.Type, "record"),
		Metadata: Metadata{
			ContentType: DetectContentTypes(record.Embed),
			Sentiment:   AnalyzeSentiment(record.Text),
			Topics:      ExtractTopics(record.Text),
		},
	}
}

func DetectContentTypes(embed *bsky.Embed) []ContentType {
	types := []ContentType{ContentTypeText}
	if embed == nil {
		return types
	}
	if len(embed.Images) > 0 {
		types = append(types, ContentTypeImage)
	}
	if embed.Media != nil && embed.Media.Type == "video" {
		types = append(types, ContentTypeVideo)
	}
	return types
}

// AnalyzeSentiment counts how many words of each list occur in the text.
// Each word counts at most once.
func AnalyzeSentiment(text string) Sentiment {
	folded := fold(text)

	positiveCount := countMatches(folded, positiveWords)
	negativeCount := countMatches(folded, negativeWords)

	switch {
	case positiveCount > negativeCount:
		return SentimentPositive
	case negativeCount > positiveCount:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ExtractTopics returns hashtags (without '#') followed by capitalized words,
// deduplicated in first-occurrence order.
func ExtractTopics(text string) []string {
	topics := make([]string, 0)
	seen := make(map[string]bool)

	add := func(topic string) {
		if topic == "" || seen[topic] {
			return
		}
		seen[topic] = true
		topics = append(topics, topic)
	}

	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		add(tag[1:])
	}

	for _, word := range strings.Fields(text) {
		if capitalizedPattern.MatchString(word) {
			add(word)
		}
	}

	return topics
}

func countMatches(folded string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(folded, fold(word)) {
			count++
		}
	}
	return count
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(value, pattern string) bool {
	return strings.Contains(fold(value), fold(pattern))
}

func isPresent(raw []byte) bool {
	return len(raw) > 0 && string(raw) != "null"
}
