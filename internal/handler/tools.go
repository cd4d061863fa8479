package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ToolsHandler struct {
	registry *tools.Registry
	pipeline *tools.Pipeline
}

func NewToolsHandler(registry *tools.Registry, pipeline *tools.Pipeline) *ToolsHandler {
	return &ToolsHandler{
		registry: registry,
		pipeline: pipeline,
	}
}

// Handles GET /api/v1/tools
func (h *ToolsHandler) List(c *gin.Context) {
	filter := tools.ListFilter{
		Category: c.Query("category"),
	}

	if tierStr := c.Query("tier"); tierStr != "" {
		t, err := tier.Parse(tierStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier"})
			return
		}
		filter.Tier = &t
	}

	descriptors := h.registry.List(filter)
	catalog := make([]tools.Metadata, 0, len(descriptors))
	for _, d := range descriptors {
		catalog = append(catalog, d.Metadata())
	}

	c.JSON(http.StatusOK, gin.H{
		"tools": catalog,
		"count": len(catalog),
	})
}

// Handles GET /api/v1/tools/:slug
func (h *ToolsHandler) Get(c *gin.Context) {
	desc, ok := h.registry.GetBySlug(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return
	}

	c.JSON(http.StatusOK, desc.Metadata())
}

// Handles GET /api/v1/tools/:slug/remaining
func (h *ToolsHandler) Remaining(c *gin.Context) {
	desc, ok := h.registry.GetBySlug(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return
	}

	ctx := c.Request.Context()
	remaining, err := h.pipeline.Remaining(ctx, desc, requesterFrom(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tool":      desc.Slug,
		"remaining": remaining,
		"unlimited": remaining < 0,
	})
}

// Handles POST /api/v1/tools/:slug/invoke
func (h *ToolsHandler) Invoke(c *gin.Context) {
	desc, ok := h.registry.GetBySlug(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return
	}

	var in tools.Inputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	ctx := c.Request.Context()
	result := h.pipeline.Invoke(ctx, desc, requesterFrom(c), in, c.Request.UserAgent())

	if result.Remaining >= 0 {
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
	}
	if result.ResetAt != nil {
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))
		if result.ErrorCode == tools.ErrCodeRateLimit {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter(*result.ResetAt)))
		}
	}

	c.JSON(invokeStatus(result), result)
}

// Maps an invocation outcome to its HTTP status.
func invokeStatus(result tools.InvokeResult) int {
	if result.Success {
		return http.StatusOK
	}

	switch result.ErrorCode {
	case tools.ErrCodeUpgradeRequired:
		return http.StatusPaymentRequired
	case tools.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case tools.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case tools.ErrCodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Builds the requester identity from whatever the auth middleware resolved:
// API key first, then JWT user, then the client IP. Both middlewares already
// established a tier (validated key record, signed JWT claim), so it rides
// along and spares the resolver a lookup.
func requesterFrom(c *gin.Context) tier.Requester {
	req := tier.Requester{IP: c.ClientIP()}

	if raw, exists := c.Get("api_key_id"); exists {
		if id, ok := raw.(uuid.UUID); ok {
			req.APIKeyID = &id
			req.Claimed = claimedTier(c, "api_key_tier")
		}
	}

	if raw, exists := c.Get("user_id"); exists {
		if s, ok := raw.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				req.UserID = &id
				if req.Claimed == nil {
					req.Claimed = claimedTier(c, "tier")
				}
			}
		}
	}

	return req
}

func claimedTier(c *gin.Context, key string) *tier.Tier {
	raw, exists := c.Get(key)
	if !exists {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	t, err := tier.Parse(s)
	if err != nil {
		return nil
	}
	return &t
}

// retryAfter clamps the seconds until reset for the Retry-After header.
func retryAfter(resetAt time.Time) int {
	secs := int(time.Until(resetAt).Seconds())
	if secs < 0 {
		secs = 0
	}
	return secs
}
