package classify

import (
	"testing"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

func TestCategoryPriorityOrder(t *testing.T) {
	// AI outranks every later rule even when their keywords are present too.
	cases := []struct {
		title, summary, want string
	}{
		{"OpenAI startup raises funding", "series b venture round", "ai"},
		{"Major breach hits cloud provider", "ransomware spreading", "security"},
		{"Startup lands Series A", "venture capital investment", "startup"},
		{"Kubernetes release notes", "deployment pipeline updates", "devtools"},
		{"New iPhone revealed", "smartphone lineup refresh", "mobile"},
		{"Pure cloud economics", "saas margins", "cloud"},
		{"Nintendo announces console", "gaming exclusives", "gaming"},
		{"Bitcoin rallies", "blockchain momentum", "crypto"},
		{"SQL at scale", "database tuning", "data"},
		{"Quarterly results roundup", "nothing notable here", "all"},
	}

	for _, tc := range cases {
		if got := Category(tc.title, tc.summary); got != tc.want {
			t.Errorf("Category(%q, %q) = %q, want %q", tc.title, tc.summary, got, tc.want)
		}
	}
}

func TestCategoryDeterministic(t *testing.T) {
	title, summary := "AI security breach at funded startup", "hack and funding in one story"
	first := Category(title, summary)
	for i := 0; i < 5; i++ {
		if got := Category(title, summary); got != first {
			t.Fatalf("Category not deterministic: %q then %q", first, got)
		}
	}
	if first != "ai" {
		t.Fatalf("expected ai to win the priority cascade, got %q", first)
	}
}

func TestSentiment(t *testing.T) {
	cases := []struct {
		title, summary, want string
	}{
		{"Product launch announced", "strong growth expected", domain.SentimentPositive},
		{"Service outage continues", "customers report problems", domain.SentimentNegative},
		{"Launch marred by outage", "", domain.SentimentNeutral}, // one positive, one negative
		{"Plain report", "no loaded words", domain.SentimentNeutral},
	}

	for _, tc := range cases {
		if got := Sentiment(tc.title, tc.summary); got != tc.want {
			t.Errorf("Sentiment(%q, %q) = %q, want %q", tc.title, tc.summary, got, tc.want)
		}
	}
}

func TestCategoriesIncludesFallbackLast(t *testing.T) {
	cats := Categories()
	if len(cats) != 10 {
		t.Fatalf("expected 10 category labels, got %d", len(cats))
	}
	if cats[len(cats)-1] != CategoryAll {
		t.Fatalf("expected fallback label last, got %q", cats[len(cats)-1])
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("ai"); got != "AI/ML tech" {
		t.Errorf("DisplayName(ai) = %q", got)
	}
	if got := DisplayName("unknown"); got != "Tech" {
		t.Errorf("DisplayName(unknown) = %q", got)
	}
}
