package nats

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/services"
)

// Routes maps event subjects to their subscribers. Each handler does its own
// database work; there is no transaction spanning handlers, and a failure in
// one never unwinds state another already committed.
func Routes(
	processing *services.ProcessingClient,
	activity *services.ActivityService,
	notifications *services.NotificationService,
) map[string]nats.MsgHandler {
	return map[string]nats.MsgHandler{
		services.SubjectScanProcess:       handleScanProcess(processing),
		services.SubjectProjectEvents:     handleProjectEvent(activity),
		services.SubjectScanEvents:        handleScanEvent(activity),
		services.SubjectNotificationsSend: handleNotificationSend(notifications),
	}
}

func handleScanProcess(processing *services.ProcessingClient) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev models.ScanProcessEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[NATS] %s: invalid payload: %v", msg.Subject, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		// No retry and no dead-letter: a failed submission is only logged and
		// the scan stays in Preparing.
		if err := processing.Run(ctx, ev); err != nil {
			log.Printf("[NATS] %s: %v", msg.Subject, err)
		}
	}
}

func handleProjectEvent(activity *services.ActivityService) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev models.ActivityEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[NATS] %s: invalid payload: %v", msg.Subject, err)
			return
		}
		if err := activity.HandleProjectEvent(ev); err != nil {
			log.Printf("[NATS] %s: %v", msg.Subject, err)
		}
	}
}

func handleScanEvent(activity *services.ActivityService) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev models.ActivityEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[NATS] %s: invalid payload: %v", msg.Subject, err)
			return
		}
		if err := activity.HandleScanEvent(ev); err != nil {
			log.Printf("[NATS] %s: %v", msg.Subject, err)
		}
	}
}

func handleNotificationSend(notifications *services.NotificationService) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev models.NotificationEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[NATS] %s: invalid payload: %v", msg.Subject, err)
			return
		}
		if err := notifications.Create(ev); err != nil {
			log.Printf("[NATS] %s: %v", msg.Subject, err)
		}
	}
}
