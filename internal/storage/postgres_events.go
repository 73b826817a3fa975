package storage

import (
	"github.com/scanforge/scan-service/internal/models"
)

func (p *PostgresStorage) SaveActivity(a models.Activity) error {
	query := `
    INSERT INTO activities (id, entity, type, metadata, user_id, created_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := p.db.Exec(query,
		a.ID, string(a.Entity), string(a.Type), []byte(a.Metadata), a.UserID, a.CreatedAt)
	return err
}

func (p *PostgresStorage) FindActivities(userID string, q ActivityQuery) ([]models.Activity, error) {
	query := `
    SELECT id, entity, type, metadata, user_id, created_at
    FROM activities
    WHERE user_id = $1
    `
	args := []any{userID}
	switch {
	case q.ProjectSlug != "":
		query += ` AND metadata->>'project_slug' = $2`
		args = append(args, q.ProjectSlug)
	case q.ScanSlug != "":
		query += ` AND metadata->>'scan_slug' = $2`
		args = append(args, q.ScanSlug)
	default:
		query += ` AND created_at >= $2`
		args = append(args, q.Since)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var a models.Activity
		var meta []byte
		if err := rows.Scan(&a.ID, &a.Entity, &a.Type, &meta, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Metadata = meta
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (p *PostgresStorage) TruncateActivities() error {
	_, err := p.db.Exec(`TRUNCATE activities`)
	return err
}

func (p *PostgresStorage) SaveNotification(n models.Notification) error {
	query := `
    INSERT INTO notifications (id, user_id, title, type, metadata, read, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	var meta any
	if len(n.Metadata) > 0 {
		meta = []byte(n.Metadata)
	}
	_, err := p.db.Exec(query, n.ID, n.UserID, n.Title, n.Type, meta, n.Read, n.CreatedAt)
	return err
}

func (p *PostgresStorage) MarkAllRead(userID string) ([]models.Notification, error) {
	if _, err := p.db.Exec(
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID); err != nil {
		return nil, err
	}
	return p.FindNotifications(userID)
}

func (p *PostgresStorage) FindNotifications(userID string) ([]models.Notification, error) {
	rows, err := p.db.Query(`
    SELECT id, user_id, title, type, COALESCE(metadata, 'null'), read, created_at
    FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var meta []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Type, &meta, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Metadata = meta
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
