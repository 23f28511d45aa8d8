package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trendlens-hq/trendlens/internal/logger"
)

// NewServer builds the HTTP engine with middleware and routes configured.
func NewServer(handler *Handler, log logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestLogger(log))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	setupRoutes(r, handler)
	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.Health)

	api := r.Group("/api")
	{
		api.GET("/news", handler.GetNews)
		api.POST("/chat", handler.PostChat)
	}
}

// requestLogger emits one structured entry per request.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.InfoObj("http request", "request", map[string]any{
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
