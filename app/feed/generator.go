package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	webBaseURL     = "https://bsky.app"
	maxTitleLength = 80
)

// Generator renders annotated posts as an RSS 2.0 document so presets can be
// followed from a feed reader.
type Generator struct {
	baseURL string
	version string
}

func NewGenerator(baseURL, version string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (g *Generator) Run(preset *Preset, posts []Post) (string, error) {
	if preset == nil {
		return "", fmt.Errorf("%w: preset is required", ErrInvalidOption)
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("Social Rider: %s", preset.Name), 4)
	g.writeElement(&buf, "link", webBaseURL, 4)
	description := preset.Description
	if description == "" {
		description = fmt.Sprintf("Filtered %s feed", feedTypeOf(&preset.Options))
	}
	g.writeElement(&buf, "description", description, 4)

	selfLink := fmt.Sprintf("%s/feeds/%s", g.baseURL, preset.Name)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := cmp.Or(latestPostTime(posts), time.Now().In(time.Local))

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Social-Rider/%s", g.version), 4)
	if len(preset.Languages) == 1 {
		g.writeElement(&buf, "language", preset.Languages[0], 4)
	}

	for _, post := range posts {
		g.writeItem(&buf, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post Post) {
	buf.WriteString("    <item>\n")

	if post.URI != "" {
		buf.WriteString("      <guid isPermaLink=\"false\">")
		xml.EscapeText(buf, []byte(post.URI))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", itemTitle(post), 6)
	g.writeElement(buf, "link", PostWebURL(post), 6)
	g.writeElement(buf, "description", cmp.Or(post.Record.Text, "No description available"), 6)

	if published := postTime(post); !published.IsZero() {
		g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	}

	if author := authorName(post); author != "" {
		g.writeElement(buf, "author", author, 6)
	}

	for _, topic := range post.Metadata.Topics {
		g.writeElement(buf, "category", topic, 6)
	}

	if post.Record.Embed != nil && post.Record.Embed.External != nil && post.Record.Embed.External.URI != "" {
		buf.WriteString("      <source url=\"")
		buf.WriteString(html.EscapeString(post.Record.Embed.External.URI))
		buf.WriteString("\">")
		xml.EscapeText(buf, []byte(cmp.Or(post.Record.Embed.External.Title, post.Record.Embed.External.URI)))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// PostWebURL maps an at:// post URI to its public web address. It returns an
// empty string for URIs that are not post records.
func PostWebURL(post Post) string {
	parts := strings.Split(strings.TrimPrefix(post.URI, "at://"), "/")
	if len(parts) != 3 || parts[1] != "app.bsky.feed.post" || parts[2] == "" {
		return ""
	}

	profile := cmp.Or(post.Author.Handle, post.Author.DID, parts[0])
	return fmt.Sprintf("%s/profile/%s/post/%s", webBaseURL, profile, parts[2])
}

func itemTitle(post Post) string {
	text := strings.Join(strings.Fields(post.Record.Text), " ")
	if utf8.RuneCountInString(text) > maxTitleLength {
		runes := []rune(text)
		text = string(runes[:maxTitleLength]) + "…"
	}

	if text == "" {
		return fmt.Sprintf("Post by @%s", post.Author.Handle)
	}
	return text
}

func authorName(post Post) string {
	if post.Author.Handle == "" {
		return post.Author.DisplayName
	}
	if post.Author.DisplayName == "" {
		return "@" + post.Author.Handle
	}
	return fmt.Sprintf("%s (@%s)", post.Author.DisplayName, post.Author.Handle)
}

// latestPostTime returns the newest timestamp in posts. Timelines are not
// strictly ordered by creation time, so every post is checked.
func latestPostTime(posts []Post) time.Time {
	var latest time.Time
	for _, post := range posts {
		if t := postTime(post); t.After(latest) {
			latest = t
		}
	}
	return latest
}

func postTime(post Post) time.Time {
	if created, err := time.Parse(time.RFC3339, post.Record.CreatedAt); err == nil {
		return created
	}
	return post.IndexedAt
}
