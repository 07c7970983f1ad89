package store

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS check_cache (
		domain      TEXT PRIMARY KEY,
		available   INTEGER NOT NULL,
		status      TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		raw         TEXT,
		checked_at  INTEGER NOT NULL,
		expires_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_check_cache_expires ON check_cache (expires_at)`,
}

// Migrate creates the cache schema if it does not exist. Statements are
// idempotent, so running at every startup is safe.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
