package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/biztools-dev/biztools/internal/service"
	"github.com/gin-gonic/gin"
)

// Issued keys all carry this prefix; anything else is rejected without a
// lookup.
const apiKeyPrefix = "bt_"

func APIKeyValidator(apiKeyService *service.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKeyHeader := strings.TrimSpace(c.GetHeader("X-API-Key"))

		if apiKeyHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(apiKeyHeader, apiKeyPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			c.Abort()
			return
		}

		apiKey, err := apiKeyService.Validate(c.Request.Context(), apiKeyHeader)
		if err != nil || apiKey == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			c.Abort()
			return
		}

		c.Set("api_key", apiKey)
		c.Set("api_key_id", apiKey.ID)
		c.Set("api_key_tier", apiKey.Tier)

		// Detached from the request context so the write survives the
		// response.
		go apiKeyService.UpdateLastUsed(context.Background(), apiKey.ID)

		c.Next()
	}
}
