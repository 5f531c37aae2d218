package feed

import (
	"time"

	"github.com/lysyi3m/social-rider/app/bsky"
)

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type FeedType string

const (
	FeedTypeTimeline FeedType = "timeline"
	FeedTypePopular  FeedType = "popular"
	FeedTypeCustom   FeedType = "custom"
)

type SortType string

const (
	SortRecent  SortType = "recent"
	SortLikes   SortType = "likes"
	SortReplies SortType = "replies"
	SortReposts SortType = "reposts"
)

// PopularFeedURI is the well-known "what's hot" feed generator.
const PopularFeedURI = "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.generator/whats-hot"

// Post processing types

type Metadata struct {
	ContentType []ContentType `json:"contentType"`
	Sentiment   Sentiment     `json:"sentiment"`
	Topics      []string      `json:"topics"`
}

type Post struct {
	URI         string          `json:"uri"`
	CID         string          `json:"cid"`
	Author      bsky.Author     `json:"author"`
	Record      bsky.PostRecord `json:"record"`
	ReplyCount  int64           `json:"replyCount"`
	RepostCount int64           `json:"repostCount"`
	LikeCount   int64           `json:"likeCount"`
	IndexedAt   time.Time       `json:"indexedAt"`
	IsReply     bool            `json:"isReply"`
	IsRepost    bool            `json:"isRepost"`
	IsQuote     bool            `json:"isQuote"`
	Metadata    Metadata        `json:"metadata"`
}

// Filter configuration types

type TopicFilter struct {
	IncludedTopics []string `json:"includedTopics" yaml:"include"`
	ExcludedTopics []string `json:"excludedTopics" yaml:"exclude"`
}

type ContentFilter struct {
	Types     []ContentType `json:"types" yaml:"types"`
	Sentiment Sentiment     `json:"sentiment,omitempty" yaml:"sentiment"`
}

// Filter holds the optional filter and sort settings. A nil pointer or empty
// value leaves the corresponding stage out of the chain.
type Filter struct {
	IncludeReplies *bool          `json:"includeReplies,omitempty" yaml:"include_replies"`
	IncludeReposts *bool          `json:"includeReposts,omitempty" yaml:"include_reposts"`
	IncludeQuotes  *bool          `json:"includeQuotes,omitempty" yaml:"include_quotes"`
	Languages      []string       `json:"languages,omitempty" yaml:"languages"`
	Topics         *TopicFilter   `json:"topics,omitempty" yaml:"topics"`
	Content        *ContentFilter `json:"content,omitempty" yaml:"content"`
	SortBy         SortType       `json:"sortBy,omitempty" yaml:"sort_by"`
}

type Options struct {
	Type          FeedType `json:"type" yaml:"type"`
	CustomFeedURI string   `json:"customFeedUri,omitempty" yaml:"uri"`
	Filter        `yaml:",inline"`
}

type FetchOptions struct {
	Cursor string
	Limit  int
	Query  string
	Feed   *Options
}

type Result struct {
	Posts  []Post `json:"posts"`
	Cursor string `json:"cursor,omitempty"`
}

// Preset is a named set of feed options loaded from <feeds-dir>/<name>.yml.
type Preset struct {
	Name        string `json:"name" yaml:"-"`
	Description string `json:"description,omitempty" yaml:"description"`
	Options     `yaml:",inline"`
}
