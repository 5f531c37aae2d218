package feed

import (
	"testing"
	"time"

	"github.com/lysyi3m/social-rider/app/bsky"
)

func boolPtr(b bool) *bool {
	return &b
}

func uris(posts []Post) []string {
	result := make([]string, 0, len(posts))
	for _, post := range posts {
		result = append(result, post.URI)
	}
	return result
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterer_Run_NoFilter(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{{URI: "1"}, {URI: "2", IsReply: true}, {URI: "3", IsRepost: true}}

	result := filterer.Run(posts, nil, "")

	if !equalStrings(uris(result), []string{"1", "2", "3"}) {
		t.Errorf("Expected upstream order [1 2 3], got %v", uris(result))
	}
}

func TestFilterer_Run_ReplyRepostQuote(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "plain"},
		{URI: "reply", IsReply: true},
		{URI: "repost", IsRepost: true},
		{URI: "quote", IsQuote: true},
	}

	tests := []struct {
		name     string
		filter   *Filter
		expected []string
	}{
		{"drop replies", &Filter{IncludeReplies: boolPtr(false)}, []string{"plain", "repost", "quote"}},
		{"drop reposts", &Filter{IncludeReposts: boolPtr(false)}, []string{"plain", "reply", "quote"}},
		{"drop quotes", &Filter{IncludeQuotes: boolPtr(false)}, []string{"plain", "reply", "repost"}},
		{"explicit include keeps all", &Filter{IncludeReplies: boolPtr(true)}, []string{"plain", "reply", "repost", "quote"}},
		{
			"drop all three",
			&Filter{IncludeReplies: boolPtr(false), IncludeReposts: boolPtr(false), IncludeQuotes: boolPtr(false)},
			[]string{"plain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filterer.Run(posts, tt.filter, "")
			if !equalStrings(uris(result), tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, uris(result))
			}
		})
	}
}

func TestFilterer_Run_Languages(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "en", Record: bsky.PostRecord{Langs: []string{"en"}}},
		{URI: "de-en", Record: bsky.PostRecord{Langs: []string{"de", "en"}}},
		{URI: "none"},
	}

	result := filterer.Run(posts, &Filter{Languages: []string{"en"}}, "")

	if !equalStrings(uris(result), []string{"en"}) {
		t.Errorf("Expected only primary-language match [en], got %v", uris(result))
	}
}

func TestFilterer_Run_Topics(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "golang", Metadata: Metadata{Topics: []string{"Golang", "Tips"}}},
		{URI: "rust", Metadata: Metadata{Topics: []string{"Rust"}}},
		{URI: "go-spam", Metadata: Metadata{Topics: []string{"GoSpam"}}},
		{URI: "empty"},
	}

	t.Run("include is case-insensitive substring", func(t *testing.T) {
		filter := &Filter{Topics: &TopicFilter{IncludedTopics: []string{"go"}}}
		result := filterer.Run(posts, filter, "")
		if !equalStrings(uris(result), []string{"golang", "go-spam"}) {
			t.Errorf("Expected [golang go-spam], got %v", uris(result))
		}
	})

	t.Run("exclude drops any match", func(t *testing.T) {
		filter := &Filter{Topics: &TopicFilter{ExcludedTopics: []string{"SPAM"}}}
		result := filterer.Run(posts, filter, "")
		if !equalStrings(uris(result), []string{"golang", "rust", "empty"}) {
			t.Errorf("Expected [golang rust empty], got %v", uris(result))
		}
	})

	t.Run("exclusion wins over inclusion", func(t *testing.T) {
		filter := &Filter{Topics: &TopicFilter{
			IncludedTopics: []string{"go"},
			ExcludedTopics: []string{"gospam"},
		}}
		result := filterer.Run(posts, filter, "")
		if !equalStrings(uris(result), []string{"golang"}) {
			t.Errorf("Expected [golang], got %v", uris(result))
		}
	})

	t.Run("exclusion never re-admits", func(t *testing.T) {
		filter := &Filter{Topics: &TopicFilter{
			IncludedTopics: []string{"rust"},
			ExcludedTopics: []string{"python"},
		}}
		result := filterer.Run(posts, filter, "")
		if !equalStrings(uris(result), []string{"rust"}) {
			t.Errorf("Expected [rust], got %v", uris(result))
		}
	})
}

func TestFilterer_Run_Content(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "text", Metadata: Metadata{ContentType: []ContentType{ContentTypeText}, Sentiment: SentimentNeutral}},
		{URI: "image", Metadata: Metadata{ContentType: []ContentType{ContentTypeText, ContentTypeImage}, Sentiment: SentimentPositive}},
		{URI: "video", Metadata: Metadata{ContentType: []ContentType{ContentTypeText, ContentTypeVideo}, Sentiment: SentimentNegative}},
	}

	result := filterer.Run(posts, &Filter{Content: &ContentFilter{Types: []ContentType{ContentTypeImage, ContentTypeVideo}}}, "")
	if !equalStrings(uris(result), []string{"image", "video"}) {
		t.Errorf("Expected [image video], got %v", uris(result))
	}

	result = filterer.Run(posts, &Filter{Content: &ContentFilter{Sentiment: SentimentPositive}}, "")
	if !equalStrings(uris(result), []string{"image"}) {
		t.Errorf("Expected [image], got %v", uris(result))
	}

	result = filterer.Run(posts, &Filter{Content: &ContentFilter{}}, "")
	if len(result) != 3 {
		t.Errorf("Expected empty content filter to keep all posts, got %d", len(result))
	}
}

func TestFilterer_Run_SortByLikes(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "a", LikeCount: 3},
		{URI: "b", LikeCount: 1},
		{URI: "c", LikeCount: 2},
	}

	result := filterer.Run(posts, &Filter{SortBy: SortLikes}, "")

	if !equalStrings(uris(result), []string{"a", "c", "b"}) {
		t.Errorf("Expected likes order [3 2 1], got %v", uris(result))
	}
	if !equalStrings(uris(posts), []string{"a", "b", "c"}) {
		t.Errorf("Expected input slice untouched, got %v", uris(posts))
	}
}

func TestFilterer_Run_SortIsStable(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "first", ReplyCount: 1},
		{URI: "top", ReplyCount: 5},
		{URI: "second", ReplyCount: 1},
		{URI: "third", ReplyCount: 1},
	}

	result := filterer.Run(posts, &Filter{SortBy: SortReplies}, "")

	if !equalStrings(uris(result), []string{"top", "first", "second", "third"}) {
		t.Errorf("Expected ties in upstream order, got %v", uris(result))
	}
}

func TestFilterer_Run_SortRecentAndReposts(t *testing.T) {
	filterer := NewFilterer()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	posts := []Post{
		{URI: "old", IndexedAt: base, RepostCount: 9},
		{URI: "new", IndexedAt: base.Add(2 * time.Hour), RepostCount: 1},
		{URI: "mid", IndexedAt: base.Add(time.Hour), RepostCount: 4},
	}

	result := filterer.Run(posts, &Filter{SortBy: SortRecent}, "")
	if !equalStrings(uris(result), []string{"new", "mid", "old"}) {
		t.Errorf("Expected recency order, got %v", uris(result))
	}

	result = filterer.Run(posts, &Filter{SortBy: SortReposts}, "")
	if !equalStrings(uris(result), []string{"old", "mid", "new"}) {
		t.Errorf("Expected repost order, got %v", uris(result))
	}
}

func TestFilterer_Run_Query(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "text", Record: bsky.PostRecord{Text: "Learning GOLANG today"}, Author: bsky.Author{Handle: "x.bsky.social"}},
		{URI: "handle", Record: bsky.PostRecord{Text: "hello"}, Author: bsky.Author{Handle: "golang.dev"}},
		{URI: "name", Record: bsky.PostRecord{Text: "hi"}, Author: bsky.Author{Handle: "y", DisplayName: "The Golang Gopher"}},
		{URI: "miss", Record: bsky.PostRecord{Text: "rust"}, Author: bsky.Author{Handle: "z"}},
	}

	result := filterer.Run(posts, nil, "golang")

	if !equalStrings(uris(result), []string{"text", "handle", "name"}) {
		t.Errorf("Expected [text handle name], got %v", uris(result))
	}
}

func TestFilterer_Run_QueryAfterSort(t *testing.T) {
	filterer := NewFilterer()

	posts := []Post{
		{URI: "a", LikeCount: 1, Record: bsky.PostRecord{Text: "go"}},
		{URI: "b", LikeCount: 9, Record: bsky.PostRecord{Text: "rust"}},
		{URI: "c", LikeCount: 5, Record: bsky.PostRecord{Text: "go go"}},
	}

	result := filterer.Run(posts, &Filter{SortBy: SortLikes}, "go")

	if !equalStrings(uris(result), []string{"c", "a"}) {
		t.Errorf("Expected [c a], got %v", uris(result))
	}
}
