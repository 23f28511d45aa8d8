package assistant

import (
	"fmt"
	"strings"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

// basePrompt frames the assistant's role and response style for every
// conversation.
const basePrompt = `You are TrendLens AI, an intelligent assistant specialized in discussing technology news articles.

Core Functions:
1. SUMMARIZE articles when asked - provide clear, concise summaries
2. ANSWER QUESTIONS about specific news stories using article content
3. PROVIDE CONTEXT and background on tech topics mentioned in articles
4. COMPARE related stories or developments when multiple articles are discussed

Response Guidelines:
- When asked to summarize, provide a clear 2-3 sentence summary
- Answer questions directly using the article content provided
- Give relevant background context for technical topics
- Compare stories by highlighting similarities, differences, and implications
- Always reference specific details from the article content
- Be conversational but factual`

// BuildSystemPrompt assembles the system message: the base prompt, then the
// focused article block when one is selected, then the numbered recent-article
// list when provided. Identical inputs always produce an identical prompt.
func BuildSystemPrompt(article *domain.Article, recent []domain.Article) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if article != nil {
		b.WriteString("\n\nCURRENT ARTICLE CONTEXT:\n")
		fmt.Fprintf(&b, "Title: %s\n", article.Title)
		fmt.Fprintf(&b, "Summary: %s\n", article.Summary)
		fmt.Fprintf(&b, "Source: %s\n", article.Source)
		fmt.Fprintf(&b, "Category: %s\n", article.Category)
		fmt.Fprintf(&b, "Published: %s\n", article.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
		fmt.Fprintf(&b, "Content: %s\n", article.Content)
		fmt.Fprintf(&b, "Link: %s\n", article.Link)
		b.WriteString("\nThe user is asking about this specific article. Use this context to provide relevant and specific answers.")
	}

	if len(recent) > 0 {
		b.WriteString("\n\nRECENT ARTICLES FOR COMPARISON (use only when user asks to compare or needs context):\n")
		for i, art := range recent {
			fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, art.Title, art.Source, art.Category)
		}
		b.WriteString("\nUse these articles when the user asks to compare stories, find related news, or needs broader context.")
	}

	return b.String()
}
