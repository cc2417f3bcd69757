// Package scrape retrieves the visible text content of story pages.
package scrape

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// maxBodySize is the maximum HTTP response body size (5MB).
const maxBodySize = 5 * 1024 * 1024

// userAgent is a browser-like User-Agent; some news sites block default
// Go clients outright.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Fetcher retrieves a page and strips it to whitespace-normalized plain
// text. Any network, protocol, or parse failure yields an empty string:
// the caller treats empty text as "insufficient content", never as fatal.
type Fetcher struct {
	client   *http.Client
	minWords int
}

// NewFetcher creates a Fetcher with the given hard per-request timeout and
// minimum usable word count.
func NewFetcher(timeout time.Duration, minWords int) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		minWords: minWords,
	}
}

// Text fetches url and returns its visible text. Readability article
// extraction is tried first; when it fails or comes back thin, the whole
// page is stripped instead so boilerplate-heavy local news sites still
// yield their content.
func (f *Fetcher) Text(ctx context.Context, url string) string {
	body := f.fetch(ctx, url)
	if len(body) == 0 {
		return ""
	}

	text := f.articleText(body, url)
	if len(strings.Fields(text)) < f.minWords {
		if full := pageText(body); len(strings.Fields(full)) > len(strings.Fields(text)) {
			text = full
		}
	}
	return normalizeWhitespace(text)
}

// Usable reports whether text meets the minimum content-length policy.
func (f *Fetcher) Usable(text string) bool {
	return len(strings.Fields(strings.TrimSpace(text))) > f.minWords
}

func (f *Fetcher) fetch(ctx context.Context, url string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("fetch: bad url", "url", url, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("fetch: non-200 response", "url", url, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		slog.Warn("fetch: read body failed", "url", url, "error", err)
		return nil
	}
	return body
}

func (f *Fetcher) articleText(body []byte, url string) string {
	parsedURL, _ := nurl.Parse(url)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// pageText strips all markup from the document, dropping script and style
// contents, and joins the remaining text nodes with spaces.
func pageText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, " ")
}

var anySpace = regexp.MustCompile(`\s+`)

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(anySpace.ReplaceAllString(s, " "))
}
