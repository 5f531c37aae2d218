package feed

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCustomFeed = errors.New("custom feed requires a feed URI")
	ErrInvalidOption     = errors.New("invalid feed option")
)

var (
	validFeedTypes    = map[FeedType]bool{FeedTypeTimeline: true, FeedTypePopular: true, FeedTypeCustom: true}
	validSortTypes    = map[SortType]bool{SortRecent: true, SortLikes: true, SortReplies: true, SortReposts: true}
	validSentiments   = map[Sentiment]bool{SentimentPositive: true, SentimentNeutral: true, SentimentNegative: true}
	validContentTypes = map[ContentType]bool{ContentTypeText: true, ContentTypeImage: true, ContentTypeVideo: true}
)

// Validate checks enumerations and the custom feed invariant. An empty feed
// type means timeline.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}

	if o.Type != "" && !validFeedTypes[o.Type] {
		return fmt.Errorf("%w: unknown feed type %q", ErrInvalidOption, o.Type)
	}
	if o.Type == FeedTypeCustom && o.CustomFeedURI == "" {
		return ErrMissingCustomFeed
	}
	if o.SortBy != "" && !validSortTypes[o.SortBy] {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidOption, o.SortBy)
	}

	if o.Content != nil {
		if o.Content.Sentiment != "" && !validSentiments[o.Content.Sentiment] {
			return fmt.Errorf("%w: unknown sentiment %q", ErrInvalidOption, o.Content.Sentiment)
		}
		for i, t := range o.Content.Types {
			if !validContentTypes[t] {
				return fmt.Errorf("%w: unknown content type at index %d: %s", ErrInvalidOption, i, t)
			}
		}
	}

	return nil
}

// MergeOptions layers override on top of base field by field. Zero values in
// override leave the base value in place.
func MergeOptions(base, override Options) Options {
	merged := base

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.CustomFeedURI != "" {
		merged.CustomFeedURI = override.CustomFeedURI
	}
	if override.IncludeReplies != nil {
		merged.IncludeReplies = override.IncludeReplies
	}
	if override.IncludeReposts != nil {
		merged.IncludeReposts = override.IncludeReposts
	}
	if override.IncludeQuotes != nil {
		merged.IncludeQuotes = override.IncludeQuotes
	}
	if len(override.Languages) > 0 {
		merged.Languages = override.Languages
	}
	if override.Topics != nil {
		topics := TopicFilter{}
		if base.Topics != nil {
			topics = *base.Topics
		}
		if len(override.Topics.IncludedTopics) > 0 {
			topics.IncludedTopics = override.Topics.IncludedTopics
		}
		if len(override.Topics.ExcludedTopics) > 0 {
			topics.ExcludedTopics = override.Topics.ExcludedTopics
		}
		merged.Topics = &topics
	}
	if override.Content != nil {
		content := ContentFilter{}
		if base.Content != nil {
			content = *base.Content
		}
		if len(override.Content.Types) > 0 {
			content.Types = override.Content.Types
		}
		if override.Content.Sentiment != "" {
			content.Sentiment = override.Content.Sentiment
		}
		merged.Content = &content
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}

	return merged
}
