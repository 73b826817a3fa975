package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scanforge/scan-service/internal/models"
)

type updateMeRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
}

// UpdateMe stores the caller's display name, used when denormalizing
// activity snapshots.
func (a *API) UpdateMe(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	user := models.User{
		ID:        userID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Users.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save user"})
		return
	}
	c.JSON(http.StatusOK, user)
}
