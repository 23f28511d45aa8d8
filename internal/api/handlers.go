package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trendlens-hq/trendlens/internal/assistant"
	"github.com/trendlens-hq/trendlens/internal/domain"
	"github.com/trendlens-hq/trendlens/internal/logger"
)

// NewsProvider yields the current merged article collection.
type NewsProvider interface {
	Articles(ctx context.Context) ([]domain.Article, error)
}

// Assistant answers one chat turn.
type Assistant interface {
	Reply(ctx context.Context, req assistant.Request) (string, error)
}

// RateLimiter admits or rejects a request for the given client key.
type RateLimiter interface {
	Allow(key string) bool
}

// Handler carries the dependencies of all HTTP endpoints.
type Handler struct {
	news        NewsProvider
	assist      Assistant
	newsLimiter RateLimiter
	chatLimiter RateLimiter
	sourceCount int
	log         logger.Logger
}

func NewHandler(news NewsProvider, assist Assistant, newsLimiter, chatLimiter RateLimiter,
	sourceCount int, log logger.Logger) *Handler {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Handler{
		news:        news,
		assist:      assist,
		newsLimiter: newsLimiter,
		chatLimiter: chatLimiter,
		sourceCount: sourceCount,
		log:         log,
	}
}

// clientKey identifies the caller for rate limiting. Proxy headers are
// preferred; without them every anonymous caller shares one bucket.
func clientKey(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

// GetNews returns the merged, deduplicated, sorted article collection.
func (h *Handler) GetNews(c *gin.Context) {
	if !h.newsLimiter.Allow(clientKey(c)) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please try again later.",
		})
		return
	}

	articles, err := h.news.Articles(c.Request.Context())
	if err != nil {
		h.log.ErrorObj("fetching news failed", "news_error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch news"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, articles)
}

// chatRequest mirrors the JSON body of POST /api/chat.
type chatRequest struct {
	Message      string            `json:"message"`
	Article      *domain.Article   `json:"article"`
	AllArticles  []domain.Article  `json:"allArticles"`
	Conversation []domain.ChatTurn `json:"conversation"`
}

// PostChat relays one conversation turn to the assistant.
func (h *Handler) PostChat(c *gin.Context) {
	if !h.chatLimiter.Allow(clientKey(c)) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please slow down.",
		})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"})
		return
	}

	reply, err := h.assist.Reply(c.Request.Context(), assistant.Request{
		Message:      req.Message,
		Article:      req.Article,
		AllArticles:  req.AllArticles,
		Conversation: req.Conversation,
	})
	if err != nil {
		h.chatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// chatError maps assistant failures to transport responses.
func (h *Handler) chatError(c *gin.Context, err error) {
	h.log.ErrorObj("chat request failed", "chat_error", err.Error())

	switch {
	case errors.Is(err, assistant.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "OpenAI API key not configured. Please check your .env file.",
		})
	case errors.Is(err, assistant.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid OpenAI API key. Please check your API key configuration.",
		})
	case errors.Is(err, assistant.ErrQuota):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "OpenAI API rate limit exceeded. Please try again later.",
		})
	case errors.Is(err, assistant.ErrModelNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "OpenAI model not found. Please check your model configuration.",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Chat service error: " + err.Error(),
		})
	}
}

// Health reports liveness and the configured source count.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"sources": h.sourceCount,
	})
}
