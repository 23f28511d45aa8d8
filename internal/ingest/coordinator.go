package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/trendlens-hq/trendlens/internal/classify"
	"github.com/trendlens-hq/trendlens/internal/domain"
	"github.com/trendlens-hq/trendlens/internal/feed"
	"github.com/trendlens-hq/trendlens/internal/logger"
)

// Options tunes the coordinator.
type Options struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultFetchTimeout = 15 * time.Second
)

// Coordinator fans out feed fetches across all sources, classifies and
// merges the results, and maintains the single cache slot.
type Coordinator struct {
	sources []feed.Source
	fetcher feed.Fetcher
	cache   *Cache
	opts    Options
	log     logger.Logger
	group   singleflight.Group

	// OnMerged, when set, observes each freshly merged collection. It is
	// dispatched on its own goroutine after the cache is replaced, never
	// on a hit; the read path does not wait for it.
	OnMerged func(ctx context.Context, articles []domain.Article)
}

// NewCoordinator wires a coordinator over the given sources and fetcher.
func NewCoordinator(sources []feed.Source, fetcher feed.Fetcher, log logger.Logger, opts Options) *Coordinator {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Coordinator{
		sources: append([]feed.Source(nil), sources...),
		fetcher: fetcher,
		cache:   NewCache(),
		opts:    opts,
		log:     log,
	}
}

// Articles returns the merged, deduplicated, time-ordered collection. A
// cache hit within the TTL is returned unchanged with no network activity.
// Concurrent cache misses share a single fan-out run.
func (c *Coordinator) Articles(ctx context.Context) ([]domain.Article, error) {
	if c == nil || c.fetcher == nil {
		return nil, fmt.Errorf("ingest coordinator is not initialized")
	}

	if cached, ok := c.cache.Get(c.opts.CacheTTL); ok {
		return cached, nil
	}

	merged, err, _ := c.group.Do("articles", func() (any, error) {
		// A waiter resolved after the winning run still gets its result.
		if cached, ok := c.cache.Get(c.opts.CacheTTL); ok {
			return cached, nil
		}

		// The run serves every waiter and feeds the cache, so it must
		// outlive the winning caller: a client disconnecting mid-flight
		// would otherwise replace the cache with an empty collection.
		// Per-source fetch timeouts still bound each request.
		runCtx := context.WithoutCancel(ctx)

		articles := c.runFanout(runCtx)
		c.cache.Replace(articles)

		if c.OnMerged != nil {
			go c.OnMerged(runCtx, articles)
		}
		return articles, nil
	})
	if err != nil {
		return nil, err
	}
	return merged.([]domain.Article), nil
}

// runFanout fetches every source concurrently, waiting for all of them to
// settle. A failing source contributes zero items; all sources failing
// yields an empty collection, not an error.
func (c *Coordinator) runFanout(ctx context.Context) []domain.Article {
	start := time.Now()

	var (
		mu       sync.Mutex
		articles []domain.Article
		failed   int
		wg       sync.WaitGroup
	)

	for _, src := range c.sources {
		wg.Add(1)
		go func(src feed.Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
			defer cancel()

			items, err := c.fetcher.Fetch(fetchCtx, src)
			if err != nil {
				c.log.WarnObj("source fetch failed", "source_error", map[string]any{
					"source": src.Name,
					"error":  err.Error(),
				})
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			built := make([]domain.Article, 0, len(items))
			for _, item := range items {
				built = append(built, buildArticle(src, item))
			}

			mu.Lock()
			articles = append(articles, built...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	merged := dedupeByLink(articles)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	c.log.InfoObj("ingestion run completed", "ingest_meta", map[string]any{
		"sources":        len(c.sources),
		"failed_sources": failed,
		"articles":       len(merged),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})

	return merged
}

// buildArticle classifies one normalized item into an Article.
func buildArticle(src feed.Source, item feed.Item) domain.Article {
	return domain.Article{
		ID:          generateID(src.Name, item.Link, item.Title),
		Title:       item.Title,
		Summary:     item.Summary,
		Content:     item.Content,
		Link:        item.Link,
		Source:      src.Name,
		PublishedAt: item.PublishedAt,
		Category:    classify.Category(item.Title, item.Summary),
		Sentiment:   classify.Sentiment(item.Title, item.Summary),
		Image:       item.Image,
	}
}

// dedupeByLink keeps at most one Article per canonical link, last write wins.
func dedupeByLink(articles []domain.Article) []domain.Article {
	byLink := make(map[string]int, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if i, seen := byLink[a.Link]; seen {
			out[i] = a
			continue
		}
		byLink[a.Link] = len(out)
		out = append(out, a)
	}
	return out
}

// generateID derives a display key from the source, link, and title. It is
// intentionally unstable across runs (timestamp + random suffix); the
// canonical link is the only dedup key.
func generateID(source, link, title string) string {
	h := int32(0)
	for _, r := range stripNonAlnum(link + title) {
		h = (h << 5) - h + int32(r)
	}
	if h < 0 {
		h = -h
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%d-%s",
		stripNonAlnum(source),
		strconv.FormatInt(int64(h), 36),
		time.Now().UnixMilli(),
		suffix,
	)
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
