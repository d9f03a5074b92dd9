package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tedivm/fedimapper/model"
)

// chunk splits items into slices of at most size, mirroring the teacher's
// bulk_insert_buffer chunking so a single huge batch never blows past an
// engine's transactional batch limits.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

// ReplacePeers implements the replace-by-ingest-id invariant for Peer
// rows (spec.md §3, §4.9): peer hosts are inserted as bare Instance rows
// first to satisfy referential integrity, then Peer rows are upserted,
// then any Peer row for host whose ingest_id differs from ingestID is
// deleted. Each step commits per chunk of s.bulkInsertBuffer rows.
func (s *Store) ReplacePeers(ctx context.Context, host string, peerHosts []string, ingestID string, baseDomainOf func(string) string) error {
	for _, batch := range chunk(peerHosts, s.bulkInsertBuffer) {
		if err := s.insertPeerInstances(ctx, batch, baseDomainOf); err != nil {
			return err
		}
	}

	for _, batch := range chunk(peerHosts, s.bulkInsertBuffer) {
		if err := s.upsertPeerRows(ctx, host, batch, ingestID); err != nil {
			return err
		}
	}

	_, err := s.pool.Exec(ctx, `DELETE FROM peer WHERE host = $1 AND ingest_id <> $2`, host, ingestID)
	if err != nil {
		return fmt.Errorf("store: replace_peers delete stale: %w", err)
	}
	return nil
}

func (s *Store) insertPeerInstances(ctx context.Context, peerHosts []string, baseDomainOf func(string) string) error {
	batch := &pgx.Batch{}
	for _, p := range peerHosts {
		batch.Queue(`
			INSERT INTO instance (host, digest, base_domain, www_host)
			VALUES ($1, $2, $3, $1)
			ON CONFLICT (host) DO UPDATE SET base_domain = EXCLUDED.base_domain
		`, p, Digest(p), baseDomainOf(p))
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range peerHosts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: replace_peers insert peer instances: %w", err)
		}
	}
	return nil
}

func (s *Store) upsertPeerRows(ctx context.Context, host string, peerHosts []string, ingestID string) error {
	batch := &pgx.Batch{}
	for _, p := range peerHosts {
		batch.Queue(`
			INSERT INTO peer (host, peer_host, ingest_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (host, peer_host) DO UPDATE SET ingest_id = EXCLUDED.ingest_id
		`, host, p, ingestID)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range peerHosts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: replace_peers upsert peer rows: %w", err)
		}
	}
	return nil
}

// ReplaceBans implements the same replace-by-ingest-id invariant for Ban
// rows (spec.md §3).
func (s *Store) ReplaceBans(ctx context.Context, host string, bans []model.Ban, ingestID string) error {
	for _, batch := range chunk(bans, s.bulkInsertBuffer) {
		if err := s.upsertBanRows(ctx, host, batch, ingestID); err != nil {
			return err
		}
	}

	_, err := s.pool.Exec(ctx, `DELETE FROM ban WHERE host = $1 AND ingest_id <> $2`, host, ingestID)
	if err != nil {
		return fmt.Errorf("store: replace_bans delete stale: %w", err)
	}
	return nil
}

func (s *Store) upsertBanRows(ctx context.Context, host string, bans []model.Ban, ingestID string) error {
	batch := &pgx.Batch{}
	for _, b := range bans {
		batch.Queue(`
			INSERT INTO ban (host, banned_host, severity, comment, digest, keywords, ingest_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (host, banned_host) DO UPDATE SET
				severity = EXCLUDED.severity,
				comment = EXCLUDED.comment,
				digest = EXCLUDED.digest,
				keywords = EXCLUDED.keywords,
				ingest_id = EXCLUDED.ingest_id
		`, host, b.BannedHost, b.Severity, b.Comment, b.Digest, b.Keywords, ingestID)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bans {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: replace_bans upsert ban rows: %w", err)
		}
	}
	return nil
}
