package models

// Event payloads published over NATS. Emission is fire-and-forget: the
// publishing call returns before any subscriber runs, and each subscriber
// does its own database work. There is no cross-handler transaction.

// ScanProcessEvent asks the processing backend worker to start a run.
type ScanProcessEvent struct {
	ScanID    string `json:"scan_id"`
	InputFile File   `json:"input_file"`
}

// ActivityEvent carries a project or scan lifecycle change. Subscribers
// re-read the entity; if it is already gone the event is dropped.
type ActivityEvent struct {
	EntityID   string     `json:"entity_id"`
	ChangeType ChangeType `json:"change_type"`
}

// NotificationEvent is the payload behind notifications.send.
type NotificationEvent struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Metadata []byte `json:"metadata,omitempty"`
}
