package store

import (
	"context"
	"fmt"
	"time"
)

// unreachableStatusSet is the set of last_ingest_status values spec.md
// §4.10's stale tier excludes and the unreachable tier targets.
var unreachableStatusSet = []string{
	"unreachable", "unknown_service", "no_dns", "disabled", "crawl_error", "robots_blocked",
}

// UnscannedHosts returns up to limit hosts with last_ingest IS NULL
// (spec.md §4.10 tier 1). Order is unspecified since there's no meaningful
// ordering criterion for never-scanned hosts.
func (s *Store) UnscannedHosts(ctx context.Context, limit int) ([]string, error) {
	return s.queryHosts(ctx, `
		SELECT host FROM instance WHERE last_ingest IS NULL LIMIT $1
	`, limit)
}

// StaleHosts returns up to limit hosts last ingested before cutoff whose
// status is non-null and not in the unreachable set, ordered by
// last_ingest ascending (spec.md §4.10 tier 2). A null status belongs to
// tier 3 (UnreachableHosts), not here: it means the previous ingest never
// reached a terminal state, which is the slow-cadence case, not the
// fast-cadence one.
func (s *Store) StaleHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return s.queryHosts(ctx, fmt.Sprintf(`
		SELECT host FROM instance
		WHERE last_ingest IS NOT NULL AND last_ingest < $2
		  AND last_ingest_status IS NOT NULL AND last_ingest_status NOT IN %s
		ORDER BY last_ingest ASC
		LIMIT $1
	`, statusSetLiteral()), limit, cutoff)
}

// UnreachableHosts returns up to limit hosts last ingested before cutoff
// whose status is in the unreachable set or null, ordered by last_ingest
// ascending (spec.md §4.10 tier 3).
func (s *Store) UnreachableHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return s.queryHosts(ctx, fmt.Sprintf(`
		SELECT host FROM instance
		WHERE last_ingest IS NOT NULL AND last_ingest < $2
		  AND (last_ingest_status IS NULL OR last_ingest_status IN %s)
		ORDER BY last_ingest ASC
		LIMIT $1
	`, statusSetLiteral()), limit, cutoff)
}

func statusSetLiteral() string {
	out := "("
	for i, st := range unreachableStatusSet {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("'%s'", st)
	}
	return out + ")"
}

func (s *Store) queryHosts(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query_hosts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("store: query_hosts scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
