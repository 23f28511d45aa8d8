package publishers

import (
	"time"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

// Event is the payload published downstream for each newly seen article.
type Event struct {
	Source      string         `json:"source"`
	Category    string         `json:"category"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for the given article.
func NewEvent(article domain.Article) Event {
	return Event{
		Source:      article.Source,
		Category:    article.Category,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
