package domain

import "time"

// Domain contains core models shared across the ingestion and query layers.

// Sentiment labels assigned by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Article is an aggregated news item. Articles are immutable once built;
// within a merged collection the Link is unique (it is the dedup key).
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment"`
	Image       string    `json:"image,omitempty"`
}

// ChatTurn is one prior exchange in an assistant conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
