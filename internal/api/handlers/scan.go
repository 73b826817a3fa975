package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/services"
	"github.com/scanforge/scan-service/internal/storage"
)

type createScanRequest struct {
	Name        string `json:"name" binding:"required"`
	ProjectID   string `json:"project_id" binding:"required"`
	InputFileID string `json:"input_file_id" binding:"required"`
}

func (a *API) CreateScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	scan, err := a.Scans.Create(services.CreateScanInput{
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		UserID:      userID,
		InputFileID: req.InputFileID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	a.Activity.RecordScan(scan.ID, models.ChangeTypeCreated)
	a.Notifications.Send(userID,
		fmt.Sprintf("Scan %q is being processed", scan.Name),
		"scan_created", nil)

	c.JSON(http.StatusCreated, scan)
}

type updateScanRequest struct {
	Name *string `json:"name"`
}

func (a *API) UpdateScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req updateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	scan, err := a.Scans.Update(userID, c.Param("id"), storage.ScanUpdate{Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}

	a.Activity.RecordScan(scan.ID, models.ChangeTypeUpdated)

	c.JSON(http.StatusOK, scan)
}

func (a *API) DeleteScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id := c.Param("id")
	if err := a.Scans.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scan deleted successfully", "scan_id": id})
}

func (a *API) GetScan(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	scan, err := a.Scans.FindOne(userID, c.Query("id"), c.Query("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

// GetPublicScan is the unauthenticated read used by share links.
func (a *API) GetPublicScan(c *gin.Context) {
	scan, err := a.Scans.FindPublic(c.Query("id"), c.Query("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (a *API) ListScans(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	scans, err := a.Scans.FindAll(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}
