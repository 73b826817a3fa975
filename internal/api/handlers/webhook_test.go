package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/services"
	"github.com/scanforge/scan-service/internal/storage"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *storage.MemoryStorage, models.Scan) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	scan := models.Scan{
		ID:        "scan-1",
		Name:      "Hallway",
		Slug:      "hallway",
		Status:    models.ScanStatusPreparing,
		UserID:    "user-1",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveScan(scan))

	api := &API{
		Scans:      &services.ScanService{Files: store, Projects: store, Scans: store},
		WebhookKey: "hook-key",
	}
	r := gin.New()
	r.POST("/api/webhooks/processing", api.ProcessingWebhook)
	return r, store, scan
}

func postWebhook(r *gin.Engine, token string, body gin.H) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/processing", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessingWebhookRejectsBadCredential(t *testing.T) {
	r, store, scan := newWebhookRouter(t)

	w := postWebhook(r, "wrong-key", gin.H{"scan_id": scan.ID, "status": "completed"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(r, "", gin.H{"scan_id": scan.ID, "status": "completed"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	got, ok := store.GetScan(scan.ID)
	require.True(t, ok)
	assert.Equal(t, models.ScanStatusPreparing, got.Status)
}

func TestProcessingWebhookCompletedAttachesSplat(t *testing.T) {
	r, store, scan := newWebhookRouter(t)

	w := postWebhook(r, "hook-key", gin.H{
		"scan_id": scan.ID,
		"status":  "completed",
		"splat": gin.H{
			"key":      "splats/hallway.splat",
			"bucket":   "scans",
			"url":      "http://minio/scans/splats/hallway.splat",
			"name":     "hallway.splat",
			"mimetype": "application/octet-stream",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, ok := store.GetScan(scan.ID)
	require.True(t, ok)
	assert.Equal(t, models.ScanStatusCompleted, got.Status)
	require.NotEmpty(t, got.SplatFileID)

	splat, ok := store.GetFile(got.SplatFileID)
	require.True(t, ok)
	assert.Equal(t, "splats/hallway.splat", splat.Key)
	assert.Equal(t, models.FileTypeImage, splat.Type)
}

func TestProcessingWebhookCompletedWithoutSplat(t *testing.T) {
	r, store, scan := newWebhookRouter(t)

	w := postWebhook(r, "hook-key", gin.H{"scan_id": scan.ID, "status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := store.GetScan(scan.ID)
	assert.Equal(t, models.ScanStatusCompleted, got.Status)
	assert.Empty(t, got.SplatFileID)
}

func TestProcessingWebhookFailedMarksScan(t *testing.T) {
	r, store, scan := newWebhookRouter(t)

	w := postWebhook(r, "hook-key", gin.H{"scan_id": scan.ID, "status": "failed"})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := store.GetScan(scan.ID)
	assert.Equal(t, models.ScanStatusFailed, got.Status)
}

func TestProcessingWebhookRejectsUnknownStatus(t *testing.T) {
	r, store, scan := newWebhookRouter(t)

	w := postWebhook(r, "hook-key", gin.H{"scan_id": scan.ID, "status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, _ := store.GetScan(scan.ID)
	assert.Equal(t, models.ScanStatusPreparing, got.Status)
}

func TestProcessingWebhookRejectsUnknownScan(t *testing.T) {
	r, _, _ := newWebhookRouter(t)

	w := postWebhook(r, "hook-key", gin.H{"scan_id": "missing", "status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Scan not found")
}
