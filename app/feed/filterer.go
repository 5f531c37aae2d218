package feed

import (
	"slices"
	"sort"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run applies the filter chain in a fixed order, then the optional sort, then
// the free-text query. A nil filter skips everything but the query. The input
// slice is never modified.
func (f *Filterer) Run(posts []Post, filter *Filter, query string) []Post {
	result := posts

	if filter != nil {
		if filter.IncludeReplies != nil && !*filter.IncludeReplies {
			result = keep(result, func(p Post) bool { return !p.IsReply })
		}
		if filter.IncludeReposts != nil && !*filter.IncludeReposts {
			result = keep(result, func(p Post) bool { return !p.IsRepost })
		}
		if filter.IncludeQuotes != nil && !*filter.IncludeQuotes {
			result = keep(result, func(p Post) bool { return !p.IsQuote })
		}
		if len(filter.Languages) > 0 {
			result = keep(result, func(p Post) bool { return f.matchesLanguage(p, filter.Languages) })
		}
		if filter.Topics != nil {
			if len(filter.Topics.IncludedTopics) > 0 {
				result = keep(result, func(p Post) bool { return f.matchesAnyTopic(p, filter.Topics.IncludedTopics) })
			}
			if len(filter.Topics.ExcludedTopics) > 0 {
				result = keep(result, func(p Post) bool { return !f.matchesAnyTopic(p, filter.Topics.ExcludedTopics) })
			}
		}
		if filter.Content != nil {
			if len(filter.Content.Types) > 0 {
				result = keep(result, func(p Post) bool { return f.matchesContentType(p, filter.Content.Types) })
			}
			if filter.Content.Sentiment != "" {
				result = keep(result, func(p Post) bool { return p.Metadata.Sentiment == filter.Content.Sentiment })
			}
		}
		if filter.SortBy != "" {
			result = f.sortPosts(result, filter.SortBy)
		}
	}

	if query != "" {
		result = keep(result, func(p Post) bool { return f.matchesQuery(p, query) })
	}

	return result
}

func (f *Filterer) matchesLanguage(post Post, languages []string) bool {
	if len(post.Record.Langs) == 0 {
		return false
	}
	return slices.Contains(languages, post.Record.Langs[0])
}

func (f *Filterer) matchesAnyTopic(post Post, patterns []string) bool {
	for _, topic := range post.Metadata.Topics {
		for _, pattern := range patterns {
			if containsFold(topic, pattern) {
				return true
			}
		}
	}
	return false
}

func (f *Filterer) matchesContentType(post Post, types []ContentType) bool {
	for _, t := range post.Metadata.ContentType {
		if slices.Contains(types, t) {
			return true
		}
	}
	return false
}

func (f *Filterer) matchesQuery(post Post, query string) bool {
	return containsFold(post.Record.Text, query) ||
		containsFold(post.Author.Handle, query) ||
		(post.Author.DisplayName != "" && containsFold(post.Author.DisplayName, query))
}

// sortPosts returns a sorted copy, descending by the requested key. Equal keys
// keep their upstream order.
func (f *Filterer) sortPosts(posts []Post, sortBy SortType) []Post {
	sorted := slices.Clone(posts)

	var less func(i, j int) bool
	switch sortBy {
	case SortRecent:
		less = func(i, j int) bool { return sorted[i].IndexedAt.After(sorted[j].IndexedAt) }
	case SortLikes:
		less = func(i, j int) bool { return sorted[i].LikeCount > sorted[j].LikeCount }
	case SortReplies:
		less = func(i, j int) bool { return sorted[i].ReplyCount > sorted[j].ReplyCount }
	case SortReposts:
		less = func(i, j int) bool { return sorted[i].RepostCount > sorted[j].RepostCount }
	default:
		return sorted
	}

	sort.SliceStable(sorted, less)
	return sorted
}

func keep(posts []Post, predicate func(Post) bool) []Post {
	kept := make([]Post, 0, len(posts))
	for _, post := range posts {
		if predicate(post) {
			kept = append(kept, post)
		}
	}
	return kept
}
