package storage

import (
	"database/sql"
	"log"
	"strconv"
	"strings"

	"github.com/scanforge/scan-service/internal/models"
)

const projectColumns = `id, name, slug, user_id, COALESCE(thumbnail_id::text, ''), created_at`

func (p *PostgresStorage) SaveProject(pr models.Project) error {
	query := `
    INSERT INTO projects (id, name, slug, user_id, thumbnail_id, created_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := p.db.Exec(query, pr.ID, pr.Name, pr.Slug, pr.UserID, nullable(pr.ThumbnailID), pr.CreatedAt)
	return err
}

func (p *PostgresStorage) scanProjectRow(row *sql.Row) (models.Project, bool) {
	var pr models.Project
	err := row.Scan(&pr.ID, &pr.Name, &pr.Slug, &pr.UserID, &pr.ThumbnailID, &pr.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[DB] project lookup: %v", err)
		}
		return models.Project{}, false
	}
	if pr.ThumbnailID != "" {
		if f, ok := p.GetFile(pr.ThumbnailID); ok {
			pr.Thumbnail = &f
		}
	}
	return pr, true
}

func (p *PostgresStorage) GetProject(id string) (models.Project, bool) {
	row := p.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return p.scanProjectRow(row)
}

func (p *PostgresStorage) FindProject(userID, id, slug string) (models.Project, bool) {
	if id != "" {
		row := p.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
		return p.scanProjectRow(row)
	}
	row := p.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE slug = $1 AND user_id = $2`, slug, userID)
	return p.scanProjectRow(row)
}

func (p *PostgresStorage) FindProjectPublic(id, slug string) (models.Project, bool) {
	if id != "" {
		return p.GetProject(id)
	}
	row := p.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
	return p.scanProjectRow(row)
}

func (p *PostgresStorage) FindProjectsForUser(userID string) ([]models.Project, error) {
	rows, err := p.db.Query(
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var pr models.Project
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Slug, &pr.UserID, &pr.ThumbnailID, &pr.CreatedAt); err != nil {
			return nil, err
		}
		if pr.ThumbnailID != "" {
			if f, ok := p.GetFile(pr.ThumbnailID); ok {
				pr.Thumbnail = &f
			}
		}
		projects = append(projects, pr)
	}
	return projects, rows.Err()
}

func (p *PostgresStorage) UpdateProject(id string, u ProjectUpdate) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if u.Name != nil {
		args = append(args, *u.Name)
		sets = append(sets, `name = $`+itoa(len(args)))
	}
	if u.ThumbnailID != nil {
		args = append(args, nullable(*u.ThumbnailID))
		sets = append(sets, `thumbnail_id = $`+itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + itoa(len(args))
	_, err := p.db.Exec(query, args...)
	return err
}

// DeleteProjectWithThumbnail removes the thumbnail file row before the
// project row itself, inside one transaction.
func (p *PostgresStorage) DeleteProjectWithThumbnail(pr models.Project) error {
	return p.transact(func(tx *sql.Tx) error {
		if pr.ThumbnailID != "" {
			if _, err := tx.Exec(`DELETE FROM files WHERE id = $1`, pr.ThumbnailID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(`DELETE FROM projects WHERE id = $1`, pr.ID)
		return err
	})
}

func (p *PostgresStorage) ProjectSlugs(prefix string) ([]string, error) {
	return p.slugsWithPrefix("projects", prefix)
}

func (p *PostgresStorage) slugsWithPrefix(table, prefix string) ([]string, error) {
	rows, err := p.db.Query(
		`SELECT slug FROM `+table+` WHERE slug LIKE $1 || '%'`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
