package uploads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tus/tusd/v2/pkg/handler"

	"github.com/scanforge/scan-service/internal/services"
)

// CompletionHandler adapts the ingestion pipeline to the upload server's
// finish hook. The pipeline runs before the final chunk request is
// acknowledged; validation failures surface to the client as a 400 with the
// stable "Invalid Filetype" message.
func CompletionHandler(ingest *services.IngestService) FinishHandler {
	return func(hook handler.HookEvent) (handler.HTTPResponse, error) {
		upload := services.CompletedUpload{
			ID:       hook.Upload.ID,
			Key:      storageKey(hook.Upload),
			MetaData: hook.Upload.MetaData,
		}
		mimeType := hook.HTTPRequest.Header.Get("file-type")

		file, err := ingest.Complete(upload, mimeType)
		if err != nil {
			if errors.Is(err, services.ErrInvalidFiletype) {
				return handler.HTTPResponse{}, handler.NewError(
					"ERR_INVALID_FILETYPE", services.ErrInvalidFiletype.Error(), http.StatusBadRequest)
			}
			return handler.HTTPResponse{}, err
		}

		body, err := json.Marshal(file)
		if err != nil {
			return handler.HTTPResponse{}, err
		}
		return handler.HTTPResponse{
			StatusCode: http.StatusOK,
			Body:       string(body),
			Header:     handler.HTTPHeader{"Content-Type": "application/json"},
		}, nil
	}
}

// storageKey resolves the object key behind an upload. The S3 store reports
// it via Storage; older IDs carry a "+multipartId" suffix to strip.
func storageKey(info handler.FileInfo) string {
	if key := info.Storage["Key"]; key != "" {
		return key
	}
	key, _, _ := strings.Cut(info.ID, "+")
	return key
}
