package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scanforge/scan-service/internal/services"
	"github.com/scanforge/scan-service/internal/storage"
)

// API bundles the singleton services behind the HTTP layer.
type API struct {
	Projects      *services.ProjectService
	Scans         *services.ScanService
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Users         storage.UserStore
	WebhookKey    string
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// respondError maps service errors onto HTTP statuses, keeping the stable
// message strings intact.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFileNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrScanNotFound),
		errors.Is(err, services.ErrMissingIdentifier),
		errors.Is(err, services.ErrInvalidFiletype):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
