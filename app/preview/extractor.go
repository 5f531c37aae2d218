// Package preview builds link cards for external links embedded in posts.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"
)

const maxPageSize = 5 << 20

var (
	ErrInvalidURL = errors.New("invalid preview URL")
	ErrEmptyPage  = errors.New("HTML data is empty")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Preview struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	SiteName string `json:"siteName,omitempty"`
	Image    string `json:"image,omitempty"`
	Language string `json:"language,omitempty"`
	Length   int    `json:"length"`
}

type Extractor struct {
	httpClient HTTPClient
	userAgent  string
}

func NewExtractor(httpClient HTTPClient, userAgent string) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch downloads the page and extracts its readable summary.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch page: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	return e.Run(data, pageURL)
}

// Run extracts the preview from an HTML document. pageURL resolves relative
// image links and may be nil.
func (e *Extractor) Run(data []byte, pageURL *url.URL) (*Preview, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPage
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	preview := &Preview{
		Title:    article.Title,
		Byline:   article.Byline,
		Excerpt:  article.Excerpt,
		SiteName: article.SiteName,
		Image:    article.Image,
		Language: article.Language,
		Length:   article.Length,
	}
	if pageURL != nil {
		preview.URL = pageURL.String()
	}

	slog.Debug("Preview extracted",
		"url", preview.URL,
		"title", preview.Title,
		"length", preview.Length)

	return preview, nil
}
