package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/services"
	"github.com/scanforge/scan-service/internal/storage"
)

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	ThumbnailID string `json:"thumbnail_id"`
}

func (a *API) CreateProject(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	project, err := a.Projects.Create(services.CreateProjectInput{
		Name:        req.Name,
		UserID:      userID,
		ThumbnailID: req.ThumbnailID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	a.Activity.RecordProject(project.ID, models.ChangeTypeCreated)

	c.JSON(http.StatusCreated, project)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	ThumbnailID *string `json:"thumbnail_id"`
}

func (a *API) UpdateProject(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	project, err := a.Projects.Update(userID, c.Param("id"), storage.ProjectUpdate{
		Name:        req.Name,
		ThumbnailID: req.ThumbnailID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	a.Activity.RecordProject(project.ID, models.ChangeTypeUpdated)

	c.JSON(http.StatusOK, project)
}

func (a *API) DeleteProject(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id := c.Param("id")
	if err := a.Projects.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully", "project_id": id})
}

func (a *API) GetProject(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	project, err := a.Projects.FindOne(userID, c.Query("id"), c.Query("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (a *API) GetPublicProject(c *gin.Context) {
	project, err := a.Projects.FindPublic(c.Query("id"), c.Query("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (a *API) ListProjects(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	projects, err := a.Projects.FindAll(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
