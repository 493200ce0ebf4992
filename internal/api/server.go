// Package api serves the review workflow over HTTP: browse the latest
// articles, summarize, export and leave feedback.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NewServer returns an engine with all routes. When accessKey is non-empty
// every route except /health requires it.
func NewServer(h *Handler, accessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	r.GET("/health", h.Health)

	g := r.Group("/")
	if accessKey != "" {
		g.Use(authMiddleware(accessKey))
	}
	g.GET("/articles/latest", h.Latest)
	g.POST("/articles/fetch", h.FetchArticle)
	g.POST("/summaries", h.Summarize)
	g.POST("/exports", h.Export)
	g.POST("/feedback", h.SubmitFeedback)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

// authMiddleware accepts the key in X-API-Key or as a bearer token.
func authMiddleware(accessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}
		if key != accessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}
