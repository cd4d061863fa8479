package handler

import (
	"net/http"
	"time"

	"github.com/biztools-dev/biztools/internal/circuitbreaker"
	"github.com/biztools-dev/biztools/internal/service"
	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
	"github.com/gin-gonic/gin"
)

// Handles system status endpoints
type StatusHandler struct {
	registry  *tools.Registry
	breaker   *circuitbreaker.Breaker
	keys      *service.APIKeyService
	startedAt time.Time
	provider  string
}

func NewStatusHandler(registry *tools.Registry, breaker *circuitbreaker.Breaker, keys *service.APIKeyService, provider string) *StatusHandler {
	return &StatusHandler{
		registry:  registry,
		breaker:   breaker,
		keys:      keys,
		startedAt: time.Now(),
		provider:  provider,
	}
}

// Handles GET /admin/status
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	keysByTier := gin.H{}
	for _, t := range tier.All() {
		count, err := h.keys.CountByTier(ctx, t.String())
		if err != nil {
			continue
		}
		keysByTier[t.String()] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds":   int(time.Since(h.startedAt).Seconds()),
		"registered_tools": h.registry.Len(),
		"ai_provider":      h.provider,
		"ai_circuit":       h.breaker.Metrics(),
		"api_keys_by_tier": keysByTier,
	})
}

// Handles POST /admin/status/circuit/reset
func (h *StatusHandler) ResetCircuit(c *gin.Context) {
	h.breaker.Reset()

	c.JSON(http.StatusOK, gin.H{
		"message": "Circuit breaker reset successfully",
	})
}
