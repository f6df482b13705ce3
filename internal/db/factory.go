package db

import (
	"fmt"
	"strings"
)

// NewStore creates a new Store instance based on the provided configuration
func NewStore(config StoreConfig) (Store, error) {
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(config.ConnectionString, config.TTL)
	case "sqlite", "sqlite3", "":
		if config.ConnectionString == "" {
			config.ConnectionString = ".depscan.db"
		}
		return NewSQLiteStore(config.ConnectionString, config.TTL)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
