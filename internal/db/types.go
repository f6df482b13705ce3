package db

import (
	"time"

	"depscan/internal/osv"
)

// Store caches vulnerability lookup results between scans, keyed by the
// dependency identity triple. It satisfies osv.Cache: storage failures
// are logged and surface as cache misses, never as scan errors.
type Store interface {
	osv.Cache
	Close() error
}

// StoreConfig holds configuration for the storage backend.
type StoreConfig struct {
	Type             string        // "sqlite" or "postgres"
	ConnectionString string        // File path for SQLite, DSN for Postgres
	TTL              time.Duration // Entries older than this count as misses
}

// DefaultTTL bounds how stale a cached advisory list may get. New
// advisories are published daily, so a day is the ceiling.
const DefaultTTL = 24 * time.Hour
