package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/trendlens-hq/trendlens/internal/domain"
	"github.com/trendlens-hq/trendlens/pkg/httpclient"
)

// Sentinel errors callers map to transport-level responses.
var (
	ErrNotConfigured = errors.New("assistant: api key not configured")
	ErrAuth          = errors.New("assistant: invalid api key")
	ErrQuota         = errors.New("assistant: provider rate limit exceeded")
	ErrModelNotFound = errors.New("assistant: model not found")
	ErrProvider      = errors.New("assistant: provider error")
)

// fallbackReply is returned when the provider answers without content.
const fallbackReply = "Sorry, I could not generate a response."

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	maxTokens   = 500
	temperature = 0.7
)

// Request is one assistant turn: the new message plus optional article focus,
// comparison pool, and prior conversation.
type Request struct {
	Message      string
	Article      *domain.Article
	AllArticles  []domain.Article
	Conversation []domain.ChatTurn
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	http    *resty.Client
	apiKey  string
	model   string
	baseURL string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient builds an assistant client. An empty API key is allowed; Reply
// then fails with ErrNotConfigured.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:    httpclient.NewRestyHTTPClient(timeout),
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Reply sends one completed conversation turn to the provider and returns the
// assistant's answer.
func (c *Client) Reply(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	messages := make([]chatMessage, 0, len(req.Conversation)+2)
	messages = append(messages, chatMessage{
		Role:    "system",
		Content: BuildSystemPrompt(req.Article, req.AllArticles),
	})
	for _, turn := range req.Conversation {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})

	body := completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("assistant: completion request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", c.statusError(resp.StatusCode(), resp.Body())
	}

	var parsed completionResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("assistant: decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return fallbackReply, nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// statusError maps the provider's HTTP status to a sentinel the API layer can
// relay.
func (c *Client) statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuth
	case http.StatusTooManyRequests:
		return ErrQuota
	case http.StatusNotFound:
		return ErrModelNotFound
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return fmt.Errorf("%w: %s", ErrProvider, parsed.Error.Message)
	}
	return fmt.Errorf("%w: status %d", ErrProvider, status)
}
