package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/trendlens-hq/trendlens/pkg/httpclient"
)

const (
	// maxItemsPerSource caps how many items one feed contributes per run.
	maxItemsPerSource = 10
	// summaryLength is the derived-summary truncation point.
	summaryLength = 200

	defaultFetchTimeout = 15 * time.Second
)

// Item is a normalized raw feed entry, before classification.
type Item struct {
	Title       string
	Link        string
	Summary     string
	Content     string
	PublishedAt time.Time
	Image       string
}

// Fetcher retrieves one source's feed document and parses it into items.
type Fetcher interface {
	Fetch(ctx context.Context, source Source) ([]Item, error)
}

type rssFetcher struct {
	client httpclient.Client
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFetcher builds an RSS/Atom fetcher over the provided HTTP client
// (or the default resty-backed one).
func NewFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(defaultFetchTimeout)
	}
	return &rssFetcher{
		client: client,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Fetch retrieves and normalizes the source feed. All failures come back as
// error values; the caller decides isolation.
func (f *rssFetcher) Fetch(ctx context.Context, source Source) ([]Item, error) {
	resp, err := f.client.Get(ctx, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", source.Name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s feed returned status %d", source.Name, resp.StatusCode())
	}

	parsed, err := f.parser.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", source.Name, err)
	}

	items := make([]Item, 0, maxItemsPerSource)
	for _, entry := range parsed.Items {
		if len(items) == maxItemsPerSource {
			break
		}
		if entry == nil || strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Link) == "" {
			continue
		}
		items = append(items, f.normalize(entry))
	}
	return items, nil
}

// normalize maps one gofeed entry to an Item, default-filling missing fields.
func (f *rssFetcher) normalize(entry *gofeed.Item) Item {
	content := StripHTML(entry.Content)
	summary := StripHTML(entry.Description)

	if summary == "" {
		summary = deriveSummary(content)
	}
	if content == "" {
		content = summary
	}

	published := f.now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	return Item{
		Title:       strings.TrimSpace(entry.Title),
		Link:        strings.TrimSpace(entry.Link),
		Summary:     summary,
		Content:     content,
		PublishedAt: published,
		Image:       extractImage(entry),
	}
}

// deriveSummary takes the first 200 characters of body text with a marker.
func deriveSummary(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryLength {
		if content == "" {
			return ""
		}
		return content + "..."
	}
	return string(runes[:summaryLength]) + "..."
}

// extractImage prefers an explicit media enclosure, falling back to the
// first image reference inside the raw body markup.
func extractImage(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc == nil {
			continue
		}
		if u := strings.TrimSpace(enc.URL); u != "" {
			return u
		}
	}
	if entry.Image != nil && strings.TrimSpace(entry.Image.URL) != "" {
		return strings.TrimSpace(entry.Image.URL)
	}
	return FirstImageSrc(entry.Content)
}

// StripHTML removes markup from a fragment, collapsing whitespace.
func StripHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// FirstImageSrc scans a markup fragment for the first <img src> reference.
func FirstImageSrc(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return strings.TrimSpace(src)
}
