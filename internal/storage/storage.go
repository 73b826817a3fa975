package storage

import (
	"time"

	"github.com/scanforge/scan-service/internal/models"
)

// ProjectUpdate is a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string
	ThumbnailID *string
}

// ScanUpdate is a partial update; nil fields are left untouched.
type ScanUpdate struct {
	Name        *string
	Status      *models.ScanStatus
	SplatFileID *string
}

// ActivityQuery scopes an activity listing. Exactly one of ProjectSlug,
// ScanSlug or Since is honored, in that order.
type ActivityQuery struct {
	ProjectSlug string
	ScanSlug    string
	Since       time.Time
}

// FileStore persists File rows. There is no standalone delete: file rows are
// removed only by the owning aggregate's cascade (scan or project delete).
type FileStore interface {
	SaveFile(f models.File) error
	GetFile(id string) (models.File, bool)
}

type ProjectStore interface {
	SaveProject(p models.Project) error
	GetProject(id string) (models.Project, bool)
	FindProject(userID, id, slug string) (models.Project, bool)
	FindProjectPublic(id, slug string) (models.Project, bool)
	FindProjectsForUser(userID string) ([]models.Project, error)
	UpdateProject(id string, u ProjectUpdate) error
	// DeleteProjectWithThumbnail removes the project's thumbnail file row, if
	// any, and then the project row inside a single transaction.
	DeleteProjectWithThumbnail(p models.Project) error
	ProjectSlugs(prefix string) ([]string, error)
}

type ScanStore interface {
	SaveScan(s models.Scan) error
	GetScan(id string) (models.Scan, bool)
	FindScan(userID, id, slug string) (models.Scan, bool)
	FindScanPublic(id, slug string) (models.Scan, bool)
	FindScansForUser(userID string) ([]models.Scan, error)
	UpdateScan(id string, u ScanUpdate) error
	// DeleteScanWithFiles removes the scan's file rows and then the scan row
	// inside a single transaction. File rows go first.
	DeleteScanWithFiles(s models.Scan) error
	ScanSlugs(prefix string) ([]string, error)
}

type ActivityStore interface {
	SaveActivity(a models.Activity) error
	FindActivities(userID string, q ActivityQuery) ([]models.Activity, error)
	// TruncateActivities wipes the audit log. Administrative tooling only.
	TruncateActivities() error
}

type NotificationStore interface {
	SaveNotification(n models.Notification) error
	// MarkAllRead flips every unread notification for the user in one
	// statement and returns the user's full notification set.
	MarkAllRead(userID string) ([]models.Notification, error)
	FindNotifications(userID string) ([]models.Notification, error)
}

type UserStore interface {
	SaveUser(u models.User) error
	GetUser(id string) (models.User, bool)
}

// Storage is the full persistence contract. PostgresStorage implements it for
// production; MemoryStorage backs tests and storage-less development.
type Storage interface {
	FileStore
	ProjectStore
	ScanStore
	ActivityStore
	NotificationStore
	UserStore
}
