package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/biztools-dev/biztools/internal/service"
	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/gin-gonic/gin"
)

// Handles admin user management endpoints
type UsersHandler struct {
	auth  *service.AuthService
	tiers *service.TierService
}

func NewUsersHandler(auth *service.AuthService, tiers *service.TierService) *UsersHandler {
	return &UsersHandler{auth: auth, tiers: tiers}
}

// Handles GET /admin/users
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

// Handles PATCH /admin/users/:id/tier
func (h *UsersHandler) UpdateTier(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := tier.Parse(req.Tier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.auth.GetUserByID(ctx, userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.tiers.UpdateUserTier(ctx, userID, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User tier updated successfully",
		"user_id": userID.String(),
		"tier":    t.String(),
	})
}
