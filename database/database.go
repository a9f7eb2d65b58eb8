package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Database is an append-only audit log of resolved lookups. Nothing in the
// resolve path reads it back.
type Database struct {
	db *sql.DB
}

type LookupRecord struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Input      string    `json:"input"`
	VideoID    string    `json:"videoId"`
	Title      string    `json:"title"`
	Fallback   bool      `json:"fallback"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// New opens (or creates) the sqlite file at dbPath.
func New(dbPath string) (*Database, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared across queries
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.WithField("module", "database").Infof("lookup history initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS lookup_history (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			input TEXT NOT NULL,
			video_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			fallback INTEGER NOT NULL DEFAULT 0,
			resolved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_history_resolved_at ON lookup_history(resolved_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_history_video_id ON lookup_history(video_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// RecordLookup stores one lookup and returns its generated id.
func (d *Database) RecordLookup(ctx context.Context, r LookupRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO lookup_history (id, kind, input, video_id, title, fallback, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Input, r.VideoID, r.Title, r.Fallback, r.ResolvedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record lookup: %w", err)
	}
	return r.ID, nil
}

// RecentLookups returns the newest lookups first.
func (d *Database) RecentLookups(ctx context.Context, limit int) ([]LookupRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, kind, input, video_id, title, fallback, resolved_at
		 FROM lookup_history
		 ORDER BY resolved_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup history: %w", err)
	}
	defer rows.Close()

	records := []LookupRecord{}
	for rows.Next() {
		var r LookupRecord
		var resolvedAt string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Input, &r.VideoID, &r.Title, &r.Fallback, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lookup row: %w", err)
		}
		r.ResolvedAt, err = time.Parse(time.RFC3339Nano, resolvedAt)
		if err != nil {
			log.Warnf("failed to parse resolved_at %q: %v", resolvedAt, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountByVideoID is how often a video has been resolved.
func (d *Database) CountByVideoID(ctx context.Context, videoID string) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lookup_history WHERE video_id = ?`, videoID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return count, nil
}
