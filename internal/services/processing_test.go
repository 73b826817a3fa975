package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/scan-service/internal/models"
)

func processEvent() models.ScanProcessEvent {
	return models.ScanProcessEvent{
		ScanID: "scan-1",
		InputFile: models.File{
			ID:     "file-1",
			Key:    "uploads/in.mp4",
			Bucket: "scans",
		},
	}
}

func TestRunSubmitsGaussianSplattingJob(t *testing.T) {
	var got processingRequest
	var auth, contentType, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewProcessingClient(srv.URL, "secret-key")
	require.NoError(t, client.Run(context.Background(), processEvent()))

	assert.Equal(t, "/run", path)
	assert.Equal(t, "Bearer secret-key", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "uploads/in.mp4", got.Input.Key)
	assert.Equal(t, "scans", got.Input.Bucket)
	assert.Equal(t, "scan-1", got.Input.ScanID)
	assert.Equal(t, "video", got.Input.DatasetType)
	assert.Equal(t, "gaussian-splatting", got.Input.Method)
}

func TestRunNormalizesBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewProcessingClient(srv.URL, "secret-key")
	err := client.Run(context.Background(), processEvent())
	assert.ErrorIs(t, err, ErrProcessingFailed)
}

func TestRunNormalizesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewProcessingClient(srv.URL, "secret-key")
	err := client.Run(context.Background(), processEvent())
	assert.ErrorIs(t, err, ErrProcessingFailed)
}
