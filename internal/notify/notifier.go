// Package notify forwards newly seen articles to the configured downstream
// publishers. Seen tracking lives in the storage layer so restarts do not
// re-announce the whole collection.
package notify

import (
	"context"

	"github.com/trendlens-hq/trendlens/internal/domain"
	"github.com/trendlens-hq/trendlens/internal/logger"
	"github.com/trendlens-hq/trendlens/pkg/publishers"
)

// SeenStore tracks which article links have already been announced.
type SeenStore interface {
	SeenArticle(link string) (bool, error)
	MarkArticle(link string) error
}

// Fanout dispatches one event across the configured sinks.
type Fanout interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Notifier filters a merged collection down to unseen articles and publishes
// each one downstream.
type Notifier struct {
	seen   SeenStore
	fanout Fanout
	log    logger.Logger
}

func New(seen SeenStore, fanout Fanout, log logger.Logger) *Notifier {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Notifier{seen: seen, fanout: fanout, log: log}
}

// Notify publishes every article not yet marked as seen. An article is marked
// only after at least one sink accepted it, so failed deliveries are retried
// on the next run. Errors are logged, never returned: announcement is best
// effort and must not disturb ingestion.
func (n *Notifier) Notify(ctx context.Context, articles []domain.Article) {
	if n.fanout == nil || n.fanout.Size() == 0 || len(articles) == 0 {
		return
	}

	published := 0
	for _, article := range articles {
		seen, err := n.seen.SeenArticle(article.Link)
		if err != nil {
			n.log.WarnObj("seen lookup failed", "notify_seen_error", map[string]any{
				"link":  article.Link,
				"error": err.Error(),
			})
			continue
		}
		if seen {
			continue
		}

		delivered, err := n.fanout.Publish(ctx, publishers.NewEvent(article))
		if err != nil {
			n.log.WarnObj("publishing article downstream failed", "notify_publish_error", map[string]any{
				"link":      article.Link,
				"delivered": delivered,
				"error":     err.Error(),
			})
		}
		if delivered == 0 {
			continue
		}

		if err := n.seen.MarkArticle(article.Link); err != nil {
			n.log.WarnObj("marking article as seen failed", "notify_mark_error", map[string]any{
				"link":  article.Link,
				"error": err.Error(),
			})
		}
		published++
	}

	if published > 0 {
		n.log.InfoObj("announced new articles", "notify_summary", map[string]any{
			"published": published,
			"total":     len(articles),
		})
	}
}
