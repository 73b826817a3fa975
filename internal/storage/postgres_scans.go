package storage

import (
	"database/sql"
	"log"
	"strings"

	"github.com/scanforge/scan-service/internal/models"
)

const scanColumns = `id, name, slug, status, project_id, user_id, input_file_id, COALESCE(splat_file_id::text, ''), created_at`

func (p *PostgresStorage) SaveScan(s models.Scan) error {
	query := `
    INSERT INTO scans (id, name, slug, status, project_id, user_id, input_file_id, splat_file_id, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := p.db.Exec(query,
		s.ID, s.Name, s.Slug, string(s.Status), s.ProjectID, s.UserID,
		s.InputFileID, nullable(s.SplatFileID), s.CreatedAt,
	)
	return err
}

func (p *PostgresStorage) scanScanRow(row *sql.Row) (models.Scan, bool) {
	var s models.Scan
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Status, &s.ProjectID, &s.UserID,
		&s.InputFileID, &s.SplatFileID, &s.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[DB] scan lookup: %v", err)
		}
		return models.Scan{}, false
	}
	p.populateScan(&s)
	return s, true
}

func (p *PostgresStorage) populateScan(s *models.Scan) {
	if f, ok := p.GetFile(s.InputFileID); ok {
		s.InputFile = &f
	}
	if s.SplatFileID != "" {
		if f, ok := p.GetFile(s.SplatFileID); ok {
			s.SplatFile = &f
		}
	}
	if pr, ok := p.GetProject(s.ProjectID); ok {
		s.Project = &pr
	}
}

func (p *PostgresStorage) GetScan(id string) (models.Scan, bool) {
	row := p.db.QueryRow(`SELECT `+scanColumns+` FROM scans WHERE id = $1`, id)
	return p.scanScanRow(row)
}

func (p *PostgresStorage) FindScan(userID, id, slug string) (models.Scan, bool) {
	if id != "" {
		row := p.db.QueryRow(`SELECT `+scanColumns+` FROM scans WHERE id = $1 AND user_id = $2`, id, userID)
		return p.scanScanRow(row)
	}
	row := p.db.QueryRow(`SELECT `+scanColumns+` FROM scans WHERE slug = $1 AND user_id = $2`, slug, userID)
	return p.scanScanRow(row)
}

func (p *PostgresStorage) FindScanPublic(id, slug string) (models.Scan, bool) {
	if id != "" {
		return p.GetScan(id)
	}
	row := p.db.QueryRow(`SELECT `+scanColumns+` FROM scans WHERE slug = $1`, slug)
	return p.scanScanRow(row)
}

func (p *PostgresStorage) FindScansForUser(userID string) ([]models.Scan, error) {
	rows, err := p.db.Query(
		`SELECT `+scanColumns+` FROM scans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]models.Scan, 0)
	for rows.Next() {
		var s models.Scan
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Status, &s.ProjectID, &s.UserID,
			&s.InputFileID, &s.SplatFileID, &s.CreatedAt); err != nil {
			return nil, err
		}
		p.populateScan(&s)
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

func (p *PostgresStorage) UpdateScan(id string, u ScanUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if u.Name != nil {
		args = append(args, *u.Name)
		sets = append(sets, `name = $`+itoa(len(args)))
	}
	if u.Status != nil {
		args = append(args, string(*u.Status))
		sets = append(sets, `status = $`+itoa(len(args)))
	}
	if u.SplatFileID != nil {
		args = append(args, nullable(*u.SplatFileID))
		sets = append(sets, `splat_file_id = $`+itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := `UPDATE scans SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + itoa(len(args))
	_, err := p.db.Exec(query, args...)
	return err
}

// DeleteScanWithFiles removes the input and splat file rows before the scan
// row itself, all inside one transaction.
func (p *PostgresStorage) DeleteScanWithFiles(s models.Scan) error {
	return p.transact(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM files WHERE id = $1`, s.InputFileID); err != nil {
			return err
		}
		if s.SplatFileID != "" {
			if _, err := tx.Exec(`DELETE FROM files WHERE id = $1`, s.SplatFileID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(`DELETE FROM scans WHERE id = $1`, s.ID)
		return err
	})
}

func (p *PostgresStorage) ScanSlugs(prefix string) ([]string, error) {
	return p.slugsWithPrefix("scans", prefix)
}
