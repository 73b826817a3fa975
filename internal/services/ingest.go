package services

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

// CompletedUpload is the terminal state of a resumable transfer as reported
// by the upload server.
type CompletedUpload struct {
	ID       string
	Key      string
	MetaData map[string]string
}

// IngestService turns a finished upload into a validated, public File record.
type IngestService struct {
	Files      storage.FileStore
	Objects    ObjectGateway
	Thumbnails Thumbnailer
}

// Complete validates and persists a finished upload. mimeType comes from the
// transport-level file-type header. Any validation failure deletes the
// orphaned object and returns ErrInvalidFiletype; the File row is only
// written once the object is confirmed stored and publicly readable.
func (s *IngestService) Complete(up CompletedUpload, mimeType string) (models.File, error) {
	if up.MetaData["filetype"] == "" {
		return models.File{}, s.reject(up.Key)
	}
	if !strings.Contains(mimeType, "video") && !strings.Contains(mimeType, "image") {
		return models.File{}, s.reject(up.Key)
	}
	if first, _, _ := strings.Cut(up.Key, "/"); first == "" {
		return models.File{}, s.reject(up.Key)
	}

	fileType := models.FileTypeImage
	if strings.Contains(mimeType, "video") {
		fileType = models.FileTypeVideo
	}

	info, err := s.Objects.StatObject(up.Key)
	if err != nil {
		return models.File{}, err
	}

	if err := s.Objects.EnablePublicAccess(info.Key); err != nil {
		return models.File{}, err
	}

	url := s.Objects.ObjectURL(info.Key)
	thumbnail := s.Thumbnails.Generate(url, mimeType, info.Key)

	name := up.MetaData["filename"]
	if name == "" {
		name = info.Key
	}

	file := models.File{
		ID:        uuid.New().String(),
		Key:       info.Key,
		Bucket:    s.Objects.Bucket(),
		URL:       url,
		Name:      name,
		MimeType:  mimeType,
		Type:      fileType,
		Thumbnail: thumbnail,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Files.SaveFile(file); err != nil {
		// cleanup so the object is not orphaned
		if delErr := s.Objects.RemoveObject(info.Key); delErr != nil {
			log.Printf("[UPLOAD] cleanup after failed save of %s: %v", info.Key, delErr)
		}
		return models.File{}, err
	}

	return file, nil
}

// reject deletes the stored object and reports the stable validation error.
func (s *IngestService) reject(key string) error {
	if key != "" {
		if err := s.Objects.RemoveObject(key); err != nil {
			log.Printf("[UPLOAD] failed to delete rejected object %s: %v", key, err)
		}
	}
	return ErrInvalidFiletype
}
