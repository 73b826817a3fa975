package models

import (
	"encoding/json"
	"time"
)

// FileType classifies an uploaded asset by its MIME category.
type FileType string

const (
	FileTypeVideo FileType = "video"
	FileTypeImage FileType = "image"
)

// ScanStatus tracks the processing state of a scan.
type ScanStatus string

const (
	ScanStatusPreparing ScanStatus = "preparing"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// File is an immutable record of a stored object. It is owned by whichever
// entity references it (project thumbnail, scan input, scan splat); the owner
// cascades deletion explicitly.
type File struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Bucket    string    `json:"bucket"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimetype"`
	Type      FileType  `json:"type"`
	Thumbnail string    `json:"thumbnail"`
	CreatedAt time.Time `json:"created_at"`
}

type Scan struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Status      ScanStatus `json:"status"`
	ProjectID   string     `json:"project_id"`
	UserID      string     `json:"user_id"`
	InputFileID string     `json:"input_file_id"`
	SplatFileID string     `json:"splat_file_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Populated relations, filled in on reads.
	InputFile *File    `json:"input_file,omitempty"`
	SplatFile *File    `json:"splat_file,omitempty"`
	Project   *Project `json:"project,omitempty"`
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	UserID      string    `json:"user_id"`
	ThumbnailID string    `json:"thumbnail_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Thumbnail *File `json:"thumbnail,omitempty"`
}

// ActivityEntity names the aggregate an activity row describes.
type ActivityEntity string

const (
	ActivityEntityProject ActivityEntity = "project"
	ActivityEntityScan    ActivityEntity = "scan"
)

// ChangeType is the lifecycle transition recorded by an activity row.
type ChangeType string

const (
	ChangeTypeCreated ChangeType = "created"
	ChangeTypeUpdated ChangeType = "updated"
	ChangeTypeDeleted ChangeType = "deleted"
)

// Activity is an append-only audit row. Metadata is a denormalized snapshot
// taken at the time of the event, so later renames never rewrite history.
type Activity struct {
	ID        string          `json:"id"`
	Entity    ActivityEntity  `json:"entity"`
	Type      ChangeType      `json:"type"`
	Metadata  json.RawMessage `json:"metadata"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// ActivityMetadata is the snapshot stored in Activity.Metadata.
type ActivityMetadata struct {
	ProjectID        string `json:"project_id,omitempty"`
	ProjectSlug      string `json:"project_slug,omitempty"`
	ProjectName      string `json:"project_name,omitempty"`
	ProjectThumbnail string `json:"project_thumbnail,omitempty"`
	ScanID           string `json:"scan_id,omitempty"`
	ScanSlug         string `json:"scan_slug,omitempty"`
	ScanName         string `json:"scan_name,omitempty"`
	UserName         string `json:"user_name,omitempty"`
}

type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
