package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStorage implements Storage for PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// Connect establishes the connection and prepares the schema.
func (p *PostgresStorage) Connect(connectionString string) error {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p.db = db

	if err := p.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("[DB] Connected to PostgreSQL successfully")
	return nil
}

func (p *PostgresStorage) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresStorage) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS files (
        id UUID PRIMARY KEY,
        key VARCHAR(500) NOT NULL,
        bucket VARCHAR(100) NOT NULL,
        url VARCHAR(1000) NOT NULL,
        name VARCHAR(255) NOT NULL,
        mimetype VARCHAR(100) NOT NULL,
        type VARCHAR(20) NOT NULL,
        thumbnail VARCHAR(1000),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS users (
        id VARCHAR(100) PRIMARY KEY,
        name VARCHAR(255) NOT NULL DEFAULT '',
        email VARCHAR(255) NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS projects (
        id UUID PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        slug VARCHAR(255) NOT NULL UNIQUE,
        user_id VARCHAR(100) NOT NULL,
        thumbnail_id UUID,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS scans (
        id UUID PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        slug VARCHAR(255) NOT NULL UNIQUE,
        status VARCHAR(20) NOT NULL,
        project_id UUID NOT NULL,
        user_id VARCHAR(100) NOT NULL,
        input_file_id UUID NOT NULL,
        splat_file_id UUID,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS activities (
        id UUID PRIMARY KEY,
        entity VARCHAR(20) NOT NULL,
        type VARCHAR(20) NOT NULL,
        metadata JSONB NOT NULL DEFAULT '{}',
        user_id VARCHAR(100) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS notifications (
        id UUID PRIMARY KEY,
        user_id VARCHAR(100) NOT NULL,
        title VARCHAR(500) NOT NULL,
        type VARCHAR(50) NOT NULL,
        metadata JSONB,
        read BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    `
	if _, err := p.db.Exec(query); err != nil {
		return err
	}

	indexQuery := `
    CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects(user_id);
    CREATE INDEX IF NOT EXISTS idx_scans_user_id ON scans(user_id);
    CREATE INDEX IF NOT EXISTS idx_scans_project_id ON scans(project_id);
    CREATE INDEX IF NOT EXISTS idx_activities_user_created ON activities(user_id, created_at DESC);
    CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
    `
	_, err := p.db.Exec(indexQuery)
	return err
}

// transact runs fn inside a transaction, rolling back on error.
func (p *PostgresStorage) transact(fn func(tx *sql.Tx) error) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("[DB] rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
