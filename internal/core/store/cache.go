package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/domainsweep/domainsweep/internal/core"
)

// GetCachedResult returns the cached result for a domain, or nil when no
// live entry exists. Expired rows are treated as misses; PurgeExpired
// removes them.
func (s *Store) GetCachedResult(ctx context.Context, domain string) (*core.CheckResult, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT available, status, status_code, raw, checked_at, expires_at
		FROM check_cache
		WHERE domain = ? AND expires_at > ?`,
		domain, time.Now().UTC().Unix(),
	)

	var (
		available  int
		status     string
		statusCode int
		rawJSON    sql.NullString
		checkedAt  int64
		expiresAt  int64
	)
	if err := row.Scan(&available, &status, &statusCode, &rawJSON, &checkedAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query cached result: %w", err)
	}

	result := &core.CheckResult{
		Domain:     domain,
		Available:  core.Availability(available),
		Status:     status,
		StatusCode: statusCode,
	}

	if rawJSON.Valid && rawJSON.String != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(rawJSON.String), &raw); err == nil {
			result.Raw = raw
		}
	}

	resolvedAt := time.Unix(checkedAt, 0).UTC()
	expiry := time.Unix(expiresAt, 0).UTC()
	result.Provenance = core.Provenance{
		RequestedAt:    resolvedAt,
		ResolvedAt:     resolvedAt,
		FromCache:      true,
		CacheExpiresAt: &expiry,
	}

	return result, nil
}

// SetCachedResult upserts a result with the given TTL.
func (s *Store) SetCachedResult(ctx context.Context, domain string, result *core.CheckResult, ttl time.Duration) error {
	if result == nil || ttl <= 0 {
		return nil
	}

	var rawJSON any
	if result.Raw != nil {
		encoded, err := json.Marshal(result.Raw)
		if err != nil {
			return fmt.Errorf("encode raw payload: %w", err)
		}
		rawJSON = string(encoded)
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO check_cache (domain, available, status, status_code, raw, checked_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			available   = excluded.available,
			status      = excluded.status,
			status_code = excluded.status_code,
			raw         = excluded.raw,
			checked_at  = excluded.checked_at,
			expires_at  = excluded.expires_at`,
		domain,
		int(result.Available),
		result.Status,
		result.StatusCode,
		rawJSON,
		now.Unix(),
		now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("store cached result: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and reports how many were
// removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM check_cache WHERE expires_at <= ?`,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired cache entries: %w", err)
	}
	return res.RowsAffected()
}
