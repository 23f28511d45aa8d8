package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

func testArticle() *domain.Article {
	return &domain.Article{
		ID:          "techbeat-abc-1",
		Title:       "Acme raises Series B",
		Summary:     "Acme closed a new round.",
		Content:     "Acme closed a new round led by Example Capital.",
		Link:        "https://example.com/acme",
		Source:      "TechBeat",
		Category:    "startup",
		PublishedAt: time.Date(2025, 8, 12, 9, 30, 0, 0, time.UTC),
	}
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	recent := []domain.Article{
		{Title: "One", Source: "A", Category: "ai"},
		{Title: "Two", Source: "B", Category: "cloud"},
	}

	first := BuildSystemPrompt(testArticle(), recent)
	second := BuildSystemPrompt(testArticle(), recent)
	if first != second {
		t.Fatalf("identical inputs must produce an identical prompt")
	}

	if !strings.HasPrefix(first, "You are TrendLens AI") {
		t.Fatalf("prompt must open with the base role framing")
	}
	for _, want := range []string{
		"CURRENT ARTICLE CONTEXT:",
		"Title: Acme raises Series B",
		"Source: TechBeat",
		"Category: startup",
		"Published: 2025-08-12T09:30:00Z",
		"Link: https://example.com/acme",
		"RECENT ARTICLES FOR COMPARISON",
		"1. One (A, ai)",
		"2. Two (B, cloud)",
	} {
		if !strings.Contains(first, want) {
			t.Fatalf("prompt missing %q:\n%s", want, first)
		}
	}
}

func TestBuildSystemPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildSystemPrompt(nil, nil)
	if strings.Contains(prompt, "CURRENT ARTICLE CONTEXT") {
		t.Fatalf("no article block expected without a focused article")
	}
	if strings.Contains(prompt, "RECENT ARTICLES FOR COMPARISON") {
		t.Fatalf("no comparison block expected without recent articles")
	}
}

func TestReplyNotConfigured(t *testing.T) {
	client := NewClient("", time.Second)
	if client.Configured() {
		t.Fatalf("empty key must report unconfigured")
	}
	_, err := client.Reply(context.Background(), Request{Message: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestReplySendsConversationAndAuth(t *testing.T) {
	var captured completionRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Here is a summary."}}]}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second, WithBaseURL(server.URL))
	reply, err := client.Reply(context.Background(), Request{
		Message: "summarize this",
		Article: testArticle(),
		Conversation: []domain.ChatTurn{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Here is a summary." {
		t.Fatalf("unexpected reply %q", reply)
	}

	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if captured.Model != "gpt-4o" {
		t.Fatalf("expected default model gpt-4o, got %q", captured.Model)
	}
	if captured.MaxTokens != 500 || captured.Temperature != 0.7 {
		t.Fatalf("unexpected sampling parameters: %+v", captured)
	}

	// system prompt, two history turns, then the new user message, in order.
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Fatalf("first message must be the system prompt")
	}
	if captured.Messages[1].Content != "earlier question" || captured.Messages[2].Content != "earlier answer" {
		t.Fatalf("history must be relayed in order")
	}
	last := captured.Messages[3]
	if last.Role != "user" || last.Content != "summarize this" {
		t.Fatalf("final message must carry the new user turn, got %+v", last)
	}
}

func TestReplyFallbackOnEmptyChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second, WithBaseURL(server.URL))
	reply, err := client.Reply(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

func TestReplyStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusTooManyRequests, ErrQuota},
		{http.StatusNotFound, ErrModelNotFound},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))

		client := NewClient("sk-test", time.Second, WithBaseURL(server.URL))
		_, err := client.Reply(context.Background(), Request{Message: "hi"})
		server.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestReplyGenericProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"backend exploded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second, WithBaseURL(server.URL))
	_, err := client.Reply(context.Background(), Request{Message: "hi"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("expected provider error message to surface, got %v", err)
	}
}
