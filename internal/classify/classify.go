package classify

import (
	"strings"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

// Package classify assigns category and sentiment labels with fixed keyword
// heuristics. Both functions are pure: same inputs, same outputs.

// CategoryAll is the fallback label for articles matching no category rule.
const CategoryAll = "all"

// rule pairs a category label with the keywords that select it.
type rule struct {
	label    string
	keywords []string
}

// categoryRules is evaluated in order; the first matching rule wins. The
// ordering is policy: a story mentioning both "ai" and "funding" is `ai`.
var categoryRules = []rule{
	{label: "ai", keywords: []string{
		"ai", "artificial intelligence", "machine learning", "deep learning",
		"neural network", "chatgpt", "openai", "llm", "gpt",
	}},
	{label: "security", keywords: []string{
		"security", "breach", "hack", "cyber", "vulnerability", "malware",
		"ransomware", "phishing",
	}},
	{label: "startup", keywords: []string{
		"startup", "funding", "investment", "series a", "series b", "venture",
		"ipo", "acquisition",
	}},
	{label: "devtools", keywords: []string{
		"devops", "kubernetes", "docker", "ci/cd", "deployment", "dev",
		"code", "programming", "api", "framework", "open source",
	}},
	{label: "mobile", keywords: []string{
		"mobile", "ios", "android", "iphone", "smartphone", "app store",
	}},
	{label: "cloud", keywords: []string{
		"cloud", "aws", "azure", "google cloud", "saas", "paas",
	}},
	{label: "gaming", keywords: []string{
		"game", "gaming", "esports", "playstation", "xbox", "nintendo",
	}},
	{label: "crypto", keywords: []string{
		"crypto", "bitcoin", "blockchain", "ethereum", "web3", "nft",
	}},
	{label: "data", keywords: []string{
		"database", "data", "analytics", "big data", "sql", "nosql",
	}},
}

var (
	positiveWords = []string{"launch", "funding", "breakthrough", "success", "growth", "innovation", "improve"}
	negativeWords = []string{"breach", "hack", "fail", "problem", "issue", "outage", "down", "crisis"}
)

// Categories returns the category labels in rule order, fallback last.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, r := range categoryRules {
		out = append(out, r.label)
	}
	return append(out, CategoryAll)
}

// Category selects the first rule whose keyword set matches title+summary.
func Category(title, summary string) string {
	text := strings.ToLower(title + " " + summary)
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.label
			}
		}
	}
	return CategoryAll
}

// Sentiment counts positive and negative keyword hits in title+summary and
// returns the strict majority; ties (including zero hits) are neutral.
func Sentiment(title, summary string) string {
	text := strings.ToLower(title + " " + summary)

	positive := countMatches(text, positiveWords)
	negative := countMatches(text, negativeWords)

	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// displayNames maps category labels to their UI names.
var displayNames = map[string]string{
	CategoryAll: "Trending",
	"ai":        "AI/ML tech",
	"startup":   "Startup",
	"security":  "Security",
	"mobile":    "Mobile tech",
	"devtools":  "DevTools",
	"gaming":    "Gaming",
	"crypto":    "Crypto",
	"cloud":     "Cloud tech",
	"data":      "Data tech",
}

// DisplayName returns the human-facing name for a category label.
func DisplayName(category string) string {
	if name, ok := displayNames[category]; ok {
		return name
	}
	return "Tech"
}
