package services

import "errors"

// Stable user-facing validation messages. API responses and tests rely on
// the exact strings.
var (
	ErrInvalidFiletype   = errors.New("Invalid Filetype")
	ErrFileNotFound      = errors.New("File not found")
	ErrProjectNotFound   = errors.New("Project not found")
	ErrScanNotFound      = errors.New("Scan not found")
	ErrMissingIdentifier = errors.New("Either id or slug is required")
	ErrProcessingFailed  = errors.New("Scan processing failed")
)

// EventPublisher is the fire-and-forget outbound side of the event fabric.
// The NATS client implements it.
type EventPublisher interface {
	Publish(subject string, payload any) error
}

// Subjects routed through the event fabric.
const (
	SubjectScanProcess       = "scans.process"
	SubjectProjectEvents     = "projects.events"
	SubjectScanEvents        = "scans.events"
	SubjectNotificationsSend = "notifications.send"
)
