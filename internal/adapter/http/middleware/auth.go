package middleware

import (
	"crypto/subtle"

	"jots/pkg/apperror"
	"jots/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// APIKeyAuth creates a middleware that checks the X-API-Key header against
// the configured key set. Every key is compared in constant time so timing
// does not reveal which keys exist.
func APIKeyAuth(apiKeys []string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(HeaderAPIKey)
		if presented == "" {
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}

		matched := false
		for _, key := range apiKeys {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
				matched = true
			}
		}
		if !matched {
			log.Warn().Str("client_ip", c.ClientIP()).Msg("rejected request with invalid api key")
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}

		c.Next()
	}
}
