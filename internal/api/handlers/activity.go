package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) ListActivities(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	activities, err := a.Activity.FindAll(userID, c.Query("project_slug"), c.Query("scan_slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch activities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
