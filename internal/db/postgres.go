package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"depscan/internal/osv"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string, ttl time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	store := &PostgresStore{db: db, ttl: ttl}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS osv_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	_, _ = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_osv_cache_created ON osv_cache(created_at)`)
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Get returns the cached vulnerability list for a dependency key.
// Expired or unreadable entries report as misses.
func (s *PostgresStore) Get(key string) ([]osv.Vulnerability, bool) {
	query := `SELECT payload, created_at FROM osv_cache WHERE cache_key = $1`
	var payload string
	var createdAt time.Time
	if err := s.db.QueryRow(query, key).Scan(&payload, &createdAt); err != nil {
		if err != sql.ErrNoRows {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if time.Since(createdAt) > s.ttl {
		return nil, false
	}

	var vulns []osv.Vulnerability
	if err := json.Unmarshal([]byte(payload), &vulns); err != nil {
		slog.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return vulns, true
}

// Put stores the vulnerability list for a dependency key, replacing any
// previous entry.
func (s *PostgresStore) Put(key string, vulns []osv.Vulnerability) {
	payload, err := json.Marshal(vulns)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	query := `INSERT INTO osv_cache (cache_key, payload, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`
	if _, err := s.db.Exec(query, key, string(payload), time.Now()); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Cleanup removes expired entries. Safe to call at any time.
func (s *PostgresStore) Cleanup() error {
	_, err := s.db.Exec(`DELETE FROM osv_cache WHERE created_at < $1`, time.Now().Add(-s.ttl))
	return err
}
