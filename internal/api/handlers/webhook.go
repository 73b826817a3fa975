package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

type processingWebhookRequest struct {
	ScanID string `json:"scan_id" binding:"required"`
	Status string `json:"status" binding:"required"`
	Splat  *struct {
		Key      string `json:"key"`
		Bucket   string `json:"bucket"`
		URL      string `json:"url"`
		Name     string `json:"name"`
		MimeType string `json:"mimetype"`
	} `json:"splat"`
}

// ProcessingWebhook is the completion callback from the processing backend.
// It moves a scan out of Preparing and, on success, attaches the splat file.
func (a *API) ProcessingWebhook(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if a.WebhookKey == "" || token != a.WebhookKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook credential"})
		return
	}

	var req processingWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	scan, ok := a.Scans.Scans.GetScan(req.ScanID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scan not found"})
		return
	}

	update := storage.ScanUpdate{}
	switch req.Status {
	case "completed":
		status := models.ScanStatusCompleted
		update.Status = &status
		if req.Splat != nil {
			fileType := models.FileTypeImage
			if strings.Contains(req.Splat.MimeType, "video") {
				fileType = models.FileTypeVideo
			}
			splat := models.File{
				ID:        uuid.New().String(),
				Key:       req.Splat.Key,
				Bucket:    req.Splat.Bucket,
				URL:       req.Splat.URL,
				Name:      req.Splat.Name,
				MimeType:  req.Splat.MimeType,
				Type:      fileType,
				CreatedAt: time.Now().UTC(),
			}
			if err := a.Scans.Files.SaveFile(splat); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save splat file"})
				return
			}
			update.SplatFileID = &splat.ID
		}
	case "failed":
		status := models.ScanStatusFailed
		update.Status = &status
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	if err := a.Scans.Scans.UpdateScan(scan.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update scan"})
		return
	}

	log.Printf("[WEBHOOK] scan %s -> %s", scan.ID, req.Status)
	c.JSON(http.StatusOK, gin.H{"scan_id": scan.ID, "status": req.Status})
}
