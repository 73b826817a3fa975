package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

// ScanService owns the scan lifecycle: creation kicks off external
// processing; deletion cascades the owned file rows.
type ScanService struct {
	Files    storage.FileStore
	Projects storage.ProjectStore
	Scans    storage.ScanStore
	Objects  ObjectGateway
	Bus      EventPublisher
}

type CreateScanInput struct {
	Name        string
	ProjectID   string
	UserID      string
	InputFileID string
}

// Create verifies the input file and project, persists the scan in Preparing
// state and emits a processing event. The event is published only after the
// row is committed; a publish failure never rolls the scan back.
func (s *ScanService) Create(in CreateScanInput) (models.Scan, error) {
	inputFile, ok := s.Files.GetFile(in.InputFileID)
	if !ok {
		return models.Scan{}, ErrFileNotFound
	}

	if _, ok := s.Projects.FindProject(in.UserID, in.ProjectID, ""); !ok {
		return models.Scan{}, ErrProjectNotFound
	}

	base := Slugify(in.Name)
	existing, err := s.Scans.ScanSlugs(base)
	if err != nil {
		return models.Scan{}, err
	}

	scan := models.Scan{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Slug:        resolveSlug(base, existing),
		Status:      models.ScanStatusPreparing,
		ProjectID:   in.ProjectID,
		UserID:      in.UserID,
		InputFileID: in.InputFileID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Scans.SaveScan(scan); err != nil {
		return models.Scan{}, err
	}

	if err := s.Bus.Publish(SubjectScanProcess, models.ScanProcessEvent{
		ScanID:    scan.ID,
		InputFile: inputFile,
	}); err != nil {
		log.Printf("[SCAN] failed to publish processing event for %s: %v", scan.ID, err)
	}

	reloaded, ok := s.Scans.FindScan(in.UserID, scan.ID, "")
	if !ok {
		return scan, nil
	}
	return reloaded, nil
}

// Update applies a partial update and returns the reloaded scan.
func (s *ScanService) Update(userID, id string, u storage.ScanUpdate) (models.Scan, error) {
	if _, ok := s.Scans.FindScan(userID, id, ""); !ok {
		return models.Scan{}, ErrScanNotFound
	}
	if err := s.Scans.UpdateScan(id, u); err != nil {
		return models.Scan{}, err
	}
	scan, _ := s.Scans.FindScan(userID, id, "")
	return scan, nil
}

// Delete removes the scan's file rows and then the scan itself in one
// transaction, then best-effort removes the stored objects.
func (s *ScanService) Delete(userID, id string) error {
	scan, ok := s.Scans.FindScan(userID, id, "")
	if !ok {
		return ErrScanNotFound
	}

	if err := s.Scans.DeleteScanWithFiles(scan); err != nil {
		return err
	}

	if s.Objects != nil {
		if scan.InputFile != nil {
			if err := s.Objects.RemoveObject(scan.InputFile.Key); err != nil {
				log.Printf("[SCAN] failed to remove object %s: %v", scan.InputFile.Key, err)
			}
		}
		if scan.SplatFile != nil {
			if err := s.Objects.RemoveObject(scan.SplatFile.Key); err != nil {
				log.Printf("[SCAN] failed to remove object %s: %v", scan.SplatFile.Key, err)
			}
		}
	}
	return nil
}

// FindOne returns a scan owned by the user, looked up by id or slug.
func (s *ScanService) FindOne(userID, id, slug string) (models.Scan, error) {
	if id == "" && slug == "" {
		return models.Scan{}, ErrMissingIdentifier
	}
	scan, ok := s.Scans.FindScan(userID, id, slug)
	if !ok {
		return models.Scan{}, ErrScanNotFound
	}
	return scan, nil
}

// FindPublic is the unauthenticated read path used by share links.
func (s *ScanService) FindPublic(id, slug string) (models.Scan, error) {
	if id == "" && slug == "" {
		return models.Scan{}, ErrMissingIdentifier
	}
	scan, ok := s.Scans.FindScanPublic(id, slug)
	if !ok {
		return models.Scan{}, ErrScanNotFound
	}
	return scan, nil
}

func (s *ScanService) FindAll(userID string) ([]models.Scan, error) {
	return s.Scans.FindScansForUser(userID)
}
