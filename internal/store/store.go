// Package store is the SQLite-backed durable store: the response cache the
// gateway wraps around every operation, and the content records that back
// content_id lookups.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gemgate/internal/core"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding cached responses and content records.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "gemgate.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	responsesTable := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at DATETIME
	);`

	contentsTable := `
	CREATE TABLE IF NOT EXISTS contents (
		id TEXT PRIMARY KEY,
		url TEXT,
		text TEXT,
		date_stored DATETIME
	);`

	tables := []string{responsesTable, contentsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached response bytes for key, if present and unexpired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM responses WHERE key = ? AND expires_at > ?`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key, time.Now().UTC()).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	return value, true, nil
}

// Set stores a response wholesale, replacing any previous entry for key.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `INSERT OR REPLACE INTO responses (key, value, expires_at) VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// PutContent persists a content record, replacing any record with the same id.
func (s *Store) PutContent(ctx context.Context, record core.ContentRecord) error {
	query := `INSERT OR REPLACE INTO contents (id, url, text, date_stored) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, record.ID, record.URL, record.Text, record.DateStored)
	if err != nil {
		return fmt.Errorf("failed to store content %s: %w", record.ID, err)
	}
	return nil
}

// GetContent retrieves a content record by id. A missing id is not an error;
// the second return value reports presence.
func (s *Store) GetContent(ctx context.Context, id string) (core.ContentRecord, bool, error) {
	query := `SELECT id, url, text, date_stored FROM contents WHERE id = ?`

	var record core.ContentRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(&record.ID, &record.URL, &record.Text, &record.DateStored)
	if err == sql.ErrNoRows {
		return core.ContentRecord{}, false, nil
	}
	if err != nil {
		return core.ContentRecord{}, false, fmt.Errorf("failed to read content %s: %w", id, err)
	}

	return record, true, nil
}

// Stats describes the current contents of the store.
type Stats struct {
	ResponseCount int
	ContentCount  int
	FileSize      int64
	LastUpdated   time.Time
}

// GetStats returns statistics about the store.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM responses": &stats.ResponseCount,
		"SELECT COUNT(*) FROM contents":  &stats.ContentCount,
	}

	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.FileSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// Cleanup removes expired responses and content records older than maxContentAge.
func (s *Store) Cleanup(maxContentAge time.Duration) error {
	now := time.Now().UTC()

	if _, err := s.db.Exec("DELETE FROM responses WHERE expires_at < ?", now); err != nil {
		return fmt.Errorf("failed to clean expired responses: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM contents WHERE date_stored < ?", now.Add(-maxContentAge)); err != nil {
		return fmt.Errorf("failed to clean old contents: %w", err)
	}

	return nil
}
