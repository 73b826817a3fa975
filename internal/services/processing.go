package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/scanforge/scan-service/internal/models"
)

const (
	processingDatasetType = "video"
	processingMethod      = "gaussian-splatting"
)

// ProcessingClient calls the external gaussian-splatting backend. Any
// transport or HTTP failure is normalized to ErrProcessingFailed; there is
// no retry or dead-letter, a failed run leaves the scan in Preparing.
type ProcessingClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewProcessingClient(baseURL, apiKey string) *ProcessingClient {
	return &ProcessingClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type processingInput struct {
	Key         string `json:"key"`
	Bucket      string `json:"bucket"`
	ScanID      string `json:"scan_id"`
	DatasetType string `json:"dataset_type"`
	Method      string `json:"method"`
}

type processingRequest struct {
	Input processingInput `json:"input"`
}

// Run submits one processing job for the scan's input file.
func (c *ProcessingClient) Run(ctx context.Context, ev models.ScanProcessEvent) error {
	body, err := json.Marshal(processingRequest{
		Input: processingInput{
			Key:         ev.InputFile.Key,
			Bucket:      ev.InputFile.Bucket,
			ScanID:      ev.ScanID,
			DatasetType: processingDatasetType,
			Method:      processingMethod,
		},
	})
	if err != nil {
		log.Printf("[PROCESSING] marshal request for scan %s: %v", ev.ScanID, err)
		return ErrProcessingFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/run", bytes.NewReader(body))
	if err != nil {
		log.Printf("[PROCESSING] build request for scan %s: %v", ev.ScanID, err)
		return ErrProcessingFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("[PROCESSING] request for scan %s failed: %v", ev.ScanID, err)
		return ErrProcessingFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[PROCESSING] scan %s rejected with %d: %s", ev.ScanID, resp.StatusCode, respBody)
		return ErrProcessingFailed
	}

	log.Printf("[PROCESSING] scan %s submitted", ev.ScanID)
	return nil
}
