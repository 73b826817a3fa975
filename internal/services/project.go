package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

type ProjectService struct {
	Files    storage.FileStore
	Projects storage.ProjectStore
	Objects  ObjectGateway
}

type CreateProjectInput struct {
	Name        string
	UserID      string
	ThumbnailID string
}

func (s *ProjectService) Create(in CreateProjectInput) (models.Project, error) {
	if in.ThumbnailID != "" {
		if _, ok := s.Files.GetFile(in.ThumbnailID); !ok {
			return models.Project{}, ErrFileNotFound
		}
	}

	base := Slugify(in.Name)
	existing, err := s.Projects.ProjectSlugs(base)
	if err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Slug:        resolveSlug(base, existing),
		UserID:      in.UserID,
		ThumbnailID: in.ThumbnailID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Projects.SaveProject(project); err != nil {
		return models.Project{}, err
	}

	reloaded, ok := s.Projects.FindProject(in.UserID, project.ID, "")
	if !ok {
		return project, nil
	}
	return reloaded, nil
}

func (s *ProjectService) Update(userID, id string, u storage.ProjectUpdate) (models.Project, error) {
	if _, ok := s.Projects.FindProject(userID, id, ""); !ok {
		return models.Project{}, ErrProjectNotFound
	}
	if u.ThumbnailID != nil && *u.ThumbnailID != "" {
		if _, ok := s.Files.GetFile(*u.ThumbnailID); !ok {
			return models.Project{}, ErrFileNotFound
		}
	}
	if err := s.Projects.UpdateProject(id, u); err != nil {
		return models.Project{}, err
	}
	project, _ := s.Projects.FindProject(userID, id, "")
	return project, nil
}

// Delete removes the thumbnail file row and the project row in one
// transaction, then best-effort removes the stored object.
func (s *ProjectService) Delete(userID, id string) error {
	project, ok := s.Projects.FindProject(userID, id, "")
	if !ok {
		return ErrProjectNotFound
	}

	if err := s.Projects.DeleteProjectWithThumbnail(project); err != nil {
		return err
	}

	if s.Objects != nil && project.Thumbnail != nil {
		if err := s.Objects.RemoveObject(project.Thumbnail.Key); err != nil {
			log.Printf("[PROJECT] failed to remove object %s: %v", project.Thumbnail.Key, err)
		}
	}
	return nil
}

func (s *ProjectService) FindOne(userID, id, slug string) (models.Project, error) {
	if id == "" && slug == "" {
		return models.Project{}, ErrMissingIdentifier
	}
	project, ok := s.Projects.FindProject(userID, id, slug)
	if !ok {
		return models.Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) FindPublic(id, slug string) (models.Project, error) {
	if id == "" && slug == "" {
		return models.Project{}, ErrMissingIdentifier
	}
	project, ok := s.Projects.FindProjectPublic(id, slug)
	if !ok {
		return models.Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) FindAll(userID string) ([]models.Project, error) {
	return s.Projects.FindProjectsForUser(userID)
}
