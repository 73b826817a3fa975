package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

// activityWindow is the recency cutoff when a listing is not scoped to a
// project or scan slug.
const activityWindow = 7 * 24 * time.Hour

// ActivityService keeps the append-only audit trail. Recording publishes an
// event and returns immediately; the subscriber side re-reads the entity and
// writes a denormalized snapshot, dropping the event silently when the
// entity is already gone.
type ActivityService struct {
	Projects   storage.ProjectStore
	Scans      storage.ScanStore
	Activities storage.ActivityStore
	Users      storage.UserStore
	Bus        EventPublisher
}

// RecordProject emits a project lifecycle event, fire-and-forget.
func (s *ActivityService) RecordProject(projectID string, change models.ChangeType) {
	s.record(SubjectProjectEvents, projectID, change)
}

// RecordScan emits a scan lifecycle event, fire-and-forget.
func (s *ActivityService) RecordScan(scanID string, change models.ChangeType) {
	s.record(SubjectScanEvents, scanID, change)
}

func (s *ActivityService) record(subject, entityID string, change models.ChangeType) {
	if err := s.Bus.Publish(subject, models.ActivityEvent{
		EntityID:   entityID,
		ChangeType: change,
	}); err != nil {
		log.Printf("[ACTIVITY] failed to publish %s for %s: %v", subject, entityID, err)
	}
}

// HandleProjectEvent writes the audit row for a project change. A missing
// project means it was deleted between emission and handling; the event is
// dropped without error.
func (s *ActivityService) HandleProjectEvent(ev models.ActivityEvent) error {
	project, ok := s.Projects.GetProject(ev.EntityID)
	if !ok {
		log.Printf("[ACTIVITY] project %s gone, dropping event", ev.EntityID)
		return nil
	}

	meta := models.ActivityMetadata{
		ProjectID:   project.ID,
		ProjectSlug: project.Slug,
		ProjectName: project.Name,
		UserName:    s.userName(project.UserID),
	}
	if project.Thumbnail != nil {
		meta.ProjectThumbnail = project.Thumbnail.URL
	}

	return s.save(models.ActivityEntityProject, ev.ChangeType, project.UserID, meta)
}

// HandleScanEvent is symmetric with HandleProjectEvent and additionally
// denormalizes the parent project's identity.
func (s *ActivityService) HandleScanEvent(ev models.ActivityEvent) error {
	scan, ok := s.Scans.GetScan(ev.EntityID)
	if !ok {
		log.Printf("[ACTIVITY] scan %s gone, dropping event", ev.EntityID)
		return nil
	}
	if scan.Project == nil {
		log.Printf("[ACTIVITY] project of scan %s gone, dropping event", ev.EntityID)
		return nil
	}

	meta := models.ActivityMetadata{
		ProjectID:   scan.Project.ID,
		ProjectSlug: scan.Project.Slug,
		ProjectName: scan.Project.Name,
		ScanID:      scan.ID,
		ScanSlug:    scan.Slug,
		ScanName:    scan.Name,
		UserName:    s.userName(scan.UserID),
	}
	if scan.Project.Thumbnail != nil {
		meta.ProjectThumbnail = scan.Project.Thumbnail.URL
	}

	return s.save(models.ActivityEntityScan, ev.ChangeType, scan.UserID, meta)
}

func (s *ActivityService) save(entity models.ActivityEntity, change models.ChangeType, userID string, meta models.ActivityMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.Activities.SaveActivity(models.Activity{
		ID:        uuid.New().String(),
		Entity:    entity,
		Type:      change,
		Metadata:  data,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *ActivityService) userName(userID string) string {
	if s.Users == nil {
		return ""
	}
	u, ok := s.Users.GetUser(userID)
	if !ok {
		return ""
	}
	return u.Name
}

// FindAll lists activities for the user, scoped by project slug, scan slug,
// or a rolling seven-day window when neither is given. Newest first.
func (s *ActivityService) FindAll(userID, projectSlug, scanSlug string) ([]models.Activity, error) {
	q := storage.ActivityQuery{
		ProjectSlug: projectSlug,
		ScanSlug:    scanSlug,
	}
	if projectSlug == "" && scanSlug == "" {
		q.Since = time.Now().UTC().Add(-activityWindow)
	}
	return s.Activities.FindActivities(userID, q)
}
