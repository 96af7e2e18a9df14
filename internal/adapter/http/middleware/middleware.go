package middleware

import (
	"fmt"
	"net/http"
	"time"

	"jots/pkg/apperror"
	"jots/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderAPIKey carries the caller's shared-secret API key.
	HeaderAPIKey = "X-API-Key"

	// HeaderIdempotencyKey carries the client-chosen idempotency token.
	HeaderIdempotencyKey = "Idempotency-Key"

	// HeaderIdempotentReplayed marks a response served from the idempotency cache.
	HeaderIdempotentReplayed = "X-Idempotent-Replayed"
)

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("idempotency_key", c.GetHeader(HeaderIdempotencyKey)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				if !c.Writer.Written() {
					response.Error(c, apperror.InternalError(fmt.Errorf("panic: %v", r)))
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// MaxBodySize creates a middleware that caps request body size.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
