package storage

import (
	"database/sql"
	"log"

	"github.com/scanforge/scan-service/internal/models"
)

// nullable maps "" to NULL for optional UUID columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (p *PostgresStorage) SaveFile(f models.File) error {
	query := `
    INSERT INTO files (id, key, bucket, url, name, mimetype, type, thumbnail, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := p.db.Exec(query,
		f.ID, f.Key, f.Bucket, f.URL, f.Name, f.MimeType, string(f.Type), f.Thumbnail, f.CreatedAt,
	)
	return err
}

func (p *PostgresStorage) GetFile(id string) (models.File, bool) {
	query := `
    SELECT id, key, bucket, url, name, mimetype, type, COALESCE(thumbnail, ''), created_at
    FROM files WHERE id = $1
    `
	var f models.File
	err := p.db.QueryRow(query, id).Scan(
		&f.ID, &f.Key, &f.Bucket, &f.URL, &f.Name, &f.MimeType, &f.Type, &f.Thumbnail, &f.CreatedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[DB] get file %s: %v", id, err)
		}
		return models.File{}, false
	}
	return f, true
}

func (p *PostgresStorage) SaveUser(u models.User) error {
	query := `
    INSERT INTO users (id, name, email, created_at)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
    `
	_, err := p.db.Exec(query, u.ID, u.Name, u.Email, u.CreatedAt)
	return err
}

func (p *PostgresStorage) GetUser(id string) (models.User, bool) {
	var u models.User
	err := p.db.QueryRow(`SELECT id, name, email, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, false
	}
	return u, true
}
