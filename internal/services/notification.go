package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

type NotificationService struct {
	Store storage.NotificationStore
	Bus   EventPublisher
}

// Send publishes a notification event; the request path never waits for the
// row to be written.
func (s *NotificationService) Send(userID, title, notificationType string, metadata []byte) {
	if err := s.Bus.Publish(SubjectNotificationsSend, models.NotificationEvent{
		UserID:   userID,
		Title:    title,
		Type:     notificationType,
		Metadata: metadata,
	}); err != nil {
		log.Printf("[NOTIFY] failed to publish notification for %s: %v", userID, err)
	}
}

// Create persists the notification row from the event payload.
func (s *NotificationService) Create(ev models.NotificationEvent) error {
	return s.Store.SaveNotification(models.Notification{
		ID:        uuid.New().String(),
		UserID:    ev.UserID,
		Title:     ev.Title,
		Type:      ev.Type,
		Metadata:  ev.Metadata,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	})
}

// Read bulk-marks every unread notification for the user and returns the
// full set, previously-read rows included.
func (s *NotificationService) Read(userID string) ([]models.Notification, error) {
	return s.Store.MarkAllRead(userID)
}

func (s *NotificationService) FindAll(userID string) ([]models.Notification, error) {
	return s.Store.FindNotifications(userID)
}
