package store

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/trendlens-hq/trendlens/internal/classify"
	"github.com/trendlens-hq/trendlens/internal/domain"
	"github.com/trendlens-hq/trendlens/internal/logger"
)

// Package store is the client-side query engine: it holds the latest article
// collection plus filter, pagination, and saved state, and recomputes derived
// views on every input change.

// TimeFilter selects the publish-time window articles must fall in.
type TimeFilter string

const (
	TimeAll   TimeFilter = "All time"
	TimeToday TimeFilter = "Today"
	TimeWeek  TimeFilter = "This week"
	TimeMonth TimeFilter = "This month"
)

var timeThresholds = map[TimeFilter]time.Duration{
	TimeToday: 24 * time.Hour,
	TimeWeek:  7 * 24 * time.Hour,
	TimeMonth: 30 * 24 * time.Hour,
}

const (
	trendingSize      = 6
	trendingTopicsLen = 5

	defaultPageSize        = 12
	defaultRefreshInterval = 2 * time.Minute
)

// trendingVocabulary is the fixed candidate keyword set scanned for topics.
var trendingVocabulary = []string{
	"ai", "artificial intelligence", "machine learning", "ml",
	"startup", "funding", "investment", "series",
	"cloud", "aws", "azure", "kubernetes",
	"security", "breach", "hack", "cyber",
	"mobile", "ios", "android", "app",
	"crypto", "bitcoin", "blockchain", "web3",
	"devtools", "api", "framework", "open source",
	"gaming", "vr", "ar", "metaverse", "platform",
	"agents", "automation", "data", "analytics",
}

// fallbackTopics is used when no vocabulary keyword appears in the collection.
var fallbackTopics = []string{
	"ai", "startup", "cloud", "security", "mobile",
	"platform", "agents", "devtools", "crypto", "data",
}

// SavedStore persists the saved-article identifier set in full.
type SavedStore interface {
	SavedIDs() ([]string, error)
	PutSavedIDs(ids []string) error
}

// Refresher produces the current merged article collection.
type Refresher interface {
	Articles(ctx context.Context) ([]domain.Article, error)
}

// Options tunes a Store.
type Options struct {
	PageSize        int
	RefreshInterval time.Duration
}

// Store holds one session's article collection and filter state. All state
// transitions are pure recomputation from the inputs; Articles are never
// mutated.
type Store struct {
	mu sync.Mutex

	articles       []domain.Article
	filtered       []domain.Article
	trending       []domain.Article
	trendingTopics []string

	category   string
	topic      string
	search     string
	timeFilter TimeFilter
	showSaved  bool

	page     int
	pageSize int
	hasMore  bool

	savedIDs []string

	savedStore SavedStore
	refresher  Refresher
	log        logger.Logger
	opts       Options
	now        func() time.Time
	rand       *rand.Rand

	refreshCancel context.CancelFunc
}

// New builds a query-engine store. The saved-article set is read from the
// saved store once, at construction.
func New(savedStore SavedStore, refresher Refresher, log logger.Logger, opts Options) *Store {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}

	s := &Store{
		category:   classify.CategoryAll,
		timeFilter: TimeAll,
		page:       1,
		pageSize:   opts.PageSize,
		savedStore: savedStore,
		refresher:  refresher,
		log:        log,
		opts:       opts,
		now:        time.Now,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if savedStore != nil {
		ids, err := savedStore.SavedIDs()
		if err != nil {
			log.WarnObj("loading saved articles failed", "error", err.Error())
		} else {
			s.savedIDs = ids
		}
	}
	return s
}

// SetArticles replaces the collection and recomputes every derived view,
// including the trending topic sample.
func (s *Store) SetArticles(articles []domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append([]domain.Article(nil), articles...)
	s.recompute()
	s.trendingTopics = s.sampleTrendingTopics()
}

// SetCategory selects a category, clears any selected topic, and resets
// pagination.
func (s *Store) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
	s.topic = ""
	s.page = 1
	s.recompute()
}

// SetTopic selects a topic hashtag filter and resets pagination.
func (s *Store) SetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = topic
	s.page = 1
	s.recompute()
}

// SetSearch updates the free-text query and resets pagination.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
	s.page = 1
	s.recompute()
}

// SetTimeFilter updates the publish-time window and resets pagination.
func (s *Store) SetTimeFilter(filter TimeFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeFilter = filter
	s.page = 1
	s.recompute()
}

// SetShowSaved toggles the saved-articles view.
func (s *Store) SetShowSaved(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSaved = show
	if !show {
		s.recompute()
	}
}

// ShowSaved reports whether the saved view is active.
func (s *Store) ShowSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showSaved
}

// LoadMore advances pagination by one page; it is a no-op when no further
// page exists.
func (s *Store) LoadMore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasMore {
		return
	}
	s.page++
	s.recompute()
}

// ResetPagination rewinds to the first page.
func (s *Store) ResetPagination() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = 1
	s.recompute()
}

// Page returns the current page number.
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// HasMore reports whether another page of filtered articles exists.
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Filtered returns the collection with every active predicate applied.
func (s *Store) Filtered() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Article(nil), s.filtered...)
}

// Trending returns the first articles of the category-filtered-only
// collection; topic, search, and time filters do not affect it.
func (s *Store) Trending() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Article(nil), s.trending...)
}

// TrendingTopics returns the current topic sample.
func (s *Store) TrendingTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.trendingTopics...)
}

// CurrentPageArticles returns the cumulative "load more" slice: every
// filtered article up to the current page boundary.
func (s *Store) CurrentPageArticles() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.page * s.pageSize
	if end > len(s.filtered) {
		end = len(s.filtered)
	}
	return append([]domain.Article(nil), s.filtered[:end]...)
}

// ToggleSaved flips membership of the article ID in the saved set and
// persists the full set immediately.
func (s *Store) ToggleSaved(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := -1
	for i, saved := range s.savedIDs {
		if saved == id {
			found = i
			break
		}
	}
	if found >= 0 {
		s.savedIDs = append(s.savedIDs[:found], s.savedIDs[found+1:]...)
	} else {
		s.savedIDs = append(s.savedIDs, id)
	}
	s.persistSaved()
}

// ClearSaved empties the saved set and persists the removal.
func (s *Store) ClearSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedIDs = nil
	s.persistSaved()
}

// Saved returns the full collection filtered by saved-ID membership,
// independent of the active filters.
func (s *Store) Saved() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := make(map[string]bool, len(s.savedIDs))
	for _, id := range s.savedIDs {
		member[id] = true
	}
	var out []domain.Article
	for _, a := range s.articles {
		if member[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// IsSaved reports membership of the article ID in the saved set.
func (s *Store) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, saved := range s.savedIDs {
		if saved == id {
			return true
		}
	}
	return false
}

func (s *Store) persistSaved() {
	if s.savedStore == nil {
		return
	}
	if err := s.savedStore.PutSavedIDs(append([]string(nil), s.savedIDs...)); err != nil {
		s.log.ErrorObj("persisting saved articles failed", "error", err.Error())
	}
}

// recompute derives the filtered and trending views from the current
// collection and filter state. Caller holds s.mu.
func (s *Store) recompute() {
	filtered := s.articles

	if s.category != classify.CategoryAll {
		filtered = filterArticles(filtered, func(a domain.Article) bool {
			return a.Category == s.category
		})
	}

	// Trending reflects only the category scope; topic, search, and time
	// filters below do not narrow it.
	trending := filtered
	if len(trending) > trendingSize {
		trending = trending[:trendingSize]
	}

	if s.topic != "" {
		topic := strings.ToLower(s.topic)
		filtered = filterArticles(filtered, func(a domain.Article) bool {
			return strings.Contains(strings.ToLower(a.Title), topic) ||
				strings.Contains(strings.ToLower(a.Summary), topic)
		})
	}

	if s.search != "" {
		query := strings.ToLower(s.search)
		filtered = filterArticles(filtered, func(a domain.Article) bool {
			return strings.Contains(strings.ToLower(a.Title), query) ||
				strings.Contains(strings.ToLower(a.Summary), query) ||
				strings.Contains(strings.ToLower(a.Source), query)
		})
	}

	if threshold, ok := timeThresholds[s.timeFilter]; ok {
		now := s.now()
		filtered = filterArticles(filtered, func(a domain.Article) bool {
			return now.Sub(a.PublishedAt) < threshold
		})
	}

	s.filtered = filtered
	s.trending = trending

	totalPages := (len(filtered) + s.pageSize - 1) / s.pageSize
	s.hasMore = s.page < totalPages
}

func filterArticles(articles []domain.Article, keep func(domain.Article) bool) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// sampleTrendingTopics scans the fixed vocabulary against the collection and
// randomly samples the qualifying keywords. The sample is intentionally
// non-deterministic. Caller holds s.mu.
func (s *Store) sampleTrendingTopics() []string {
	var qualifying []string
	for _, keyword := range trendingVocabulary {
		for _, a := range s.articles {
			text := strings.ToLower(a.Title + " " + a.Summary)
			if strings.Contains(text, keyword) {
				qualifying = append(qualifying, keyword)
				break
			}
		}
	}
	if len(qualifying) == 0 {
		qualifying = append([]string(nil), fallbackTopics...)
	}

	s.rand.Shuffle(len(qualifying), func(i, j int) {
		qualifying[i], qualifying[j] = qualifying[j], qualifying[i]
	})
	if len(qualifying) > trendingTopicsLen {
		qualifying = qualifying[:trendingTopicsLen]
	}
	return qualifying
}

// StartAutoRefresh begins periodic re-ingestion, feeding each result back
// into the store. Starting while already running is a no-op. The returned
// bool reports whether a refresh loop was started.
func (s *Store) StartAutoRefresh(ctx context.Context) bool {
	s.mu.Lock()
	if s.refreshCancel != nil || s.refresher == nil {
		s.mu.Unlock()
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.refreshCancel = cancel
	interval := s.opts.RefreshInterval
	s.mu.Unlock()

	go s.refreshLoop(loopCtx, interval)
	return true
}

// StopAutoRefresh cancels the refresh loop. No further ingestion is
// triggered; a run already in flight completes normally.
func (s *Store) StopAutoRefresh() {
	s.mu.Lock()
	cancel := s.refreshCancel
	s.refreshCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// AutoRefreshRunning reports whether the refresh loop is active.
func (s *Store) AutoRefreshRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCancel != nil
}

func (s *Store) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			// Detach the fetch from loop cancellation: stopping the timer
			// must not abort a run already in flight.
			articles, err := s.refresher.Articles(context.WithoutCancel(ctx))
			if err != nil {
				s.log.WarnObj("auto refresh failed", "error", err.Error())
				continue
			}
			s.SetArticles(articles)
		}
	}
}
