// Package store implements the transactional store adapter (C9 in
// spec.md §4.9) on Postgres via jackc/pgx. The teacher persisted to
// Cassandra (see cassandra/schema.go); that store cannot provide the
// multi-row ACID transactions replace_peers and replace_bans depend on
// (see DESIGN.md), so this adapter is grounded instead on the other
// pack's pgx-based blueprint usage, kept in the teacher's adapter-struct
// shape (one exported type wrapping a pooled connection, one method per
// operation named in spec.md §4.9).
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tedivm/fedimapper/model"
)

// Store wraps a pooled Postgres connection. Callers construct one per
// process and share it across workers (spec.md §4.8 notes the database is
// the one resource shared across the whole coordinator/worker pool).
type Store struct {
	pool             *pgxpool.Pool
	bulkInsertBuffer int
}

// Open connects to databaseURL and returns a ready Store. bulkInsertBuffer
// is the chunk size replace_peers/replace_bans commit in (spec.md §4.9,
// default from config.Settings.BulkInsertBuffer).
func Open(ctx context.Context, databaseURL string, bulkInsertBuffer int) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if bulkInsertBuffer <= 0 {
		bulkInsertBuffer = 1000
	}
	return &Store{pool: pool, bulkInsertBuffer: bulkInsertBuffer}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Digest returns the SHA-256 hex digest of host, per spec.md §8's invariant
// digest(H) == sha256_hex(utf8(H)).
func Digest(host string) string {
	sum := sha256.Sum256([]byte(host))
	return hex.EncodeToString(sum[:])
}

// GetOrCreateInstance returns the Instance row for host, inserting a bare
// row (base_domain supplied by caller, digest computed from host) if it
// doesn't exist.
func (s *Store) GetOrCreateInstance(ctx context.Context, host, baseDomain string) (*model.Instance, error) {
	digest := Digest(host)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO instance (host, digest, base_domain, www_host)
		VALUES ($1, $2, $3, $1)
		ON CONFLICT (host) DO NOTHING
	`, host, digest, baseDomain)
	if err != nil {
		return nil, fmt.Errorf("store: get_or_create_instance insert: %w", err)
	}

	return s.GetInstance(ctx, host)
}

// GetInstance fetches the current row for host, or nil if it doesn't
// exist.
func (s *Store) GetInstance(ctx context.Context, host string) (*model.Instance, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT host, digest, base_domain, www_host,
		       last_ingest, last_ingest_success, first_ingest_success, last_ingest_peers,
		       last_ingest_status,
		       title, short_description, email, thumbnail,
		       software, software_version, mastodon_version, nodeinfo_version, version,
		       current_user_count, current_status_count, current_domain_count,
		       registration_open, approval_required, has_public_bans, has_public_peers,
		       ip_address, asn
		FROM instance WHERE host = $1
	`, host)

	var i model.Instance
	var status *string
	err := row.Scan(
		&i.Host, &i.Digest, &i.BaseDomain, &i.WWWHost,
		&i.LastIngest, &i.LastIngestSuccess, &i.FirstIngestSuccess, &i.LastIngestPeers,
		&status,
		&i.Title, &i.ShortDescription, &i.Email, &i.Thumbnail,
		&i.Software, &i.SoftwareVersion, &i.MastodonVersion, &i.NodeinfoVersion, &i.Version,
		&i.CurrentUserCount, &i.CurrentStatusCount, &i.CurrentDomainCount,
		&i.RegistrationOpen, &i.ApprovalRequired, &i.HasPublicBans, &i.HasPublicPeers,
		&i.IPAddress, &i.ASN,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get_instance: %w", err)
	}
	if status != nil {
		st := model.Status(*status)
		i.LastIngestStatus = &st
	}
	return &i, nil
}

// TouchInstance upserts the bare row and stamps last_ingest=now, setting
// digest/base_domain only if they were previously unset (spec.md §4.7
// step 3).
func (s *Store) TouchInstance(ctx context.Context, host, digest, baseDomain string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO instance (host, digest, base_domain, www_host, last_ingest)
		VALUES ($1, $2, $3, $1, $4)
		ON CONFLICT (host) DO UPDATE SET
			last_ingest = EXCLUDED.last_ingest,
			digest = COALESCE(instance.digest, EXCLUDED.digest),
			base_domain = COALESCE(instance.base_domain, EXCLUDED.base_domain)
	`, host, digest, baseDomain, now)
	if err != nil {
		return fmt.Errorf("store: touch_instance: %w", err)
	}
	return nil
}

// SetStatus records a terminal ingest status.
func (s *Store) SetStatus(ctx context.Context, host string, status model.Status) error {
	_, err := s.pool.Exec(ctx, `UPDATE instance SET last_ingest_status = $2 WHERE host = $1`, host, string(status))
	if err != nil {
		return fmt.Errorf("store: set_status: %w", err)
	}
	return nil
}

// SetIPAndASN records the DNS/ASN probe outcome for host (spec.md §4.7
// steps 4-5).
func (s *Store) SetIPAndASN(ctx context.Context, host string, ip *string, asn *string) error {
	_, err := s.pool.Exec(ctx, `UPDATE instance SET ip_address = $2, asn = $3 WHERE host = $1`, host, ip, asn)
	if err != nil {
		return fmt.Errorf("store: set_ip_and_asn: %w", err)
	}
	return nil
}

// MarkSuccess sets last_ingest_status=success, last_ingest_success=now,
// and first_ingest_success=now if it was previously null (spec.md §4.7
// step 9).
func (s *Store) MarkSuccess(ctx context.Context, host string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE instance SET
			last_ingest_status = 'success',
			last_ingest_success = $2,
			first_ingest_success = COALESCE(first_ingest_success, $2)
		WHERE host = $1
	`, host, now)
	if err != nil {
		return fmt.Errorf("store: mark_success: %w", err)
	}
	return nil
}

// UpdateDescriptiveFields writes the extractor-populated fields onto an
// Instance row. Every listed column is overwritten, so a pointer field left
// nil is written as NULL; callers should pass the full desired value
// including nil when the extractor found no value.
func (s *Store) UpdateDescriptiveFields(ctx context.Context, i model.Instance) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE instance SET
			title = $2, short_description = $3, email = $4, thumbnail = $5,
			software = $6, software_version = $7, mastodon_version = $8,
			nodeinfo_version = $9, version = $10,
			current_user_count = $11, current_status_count = $12, current_domain_count = $13,
			registration_open = $14, approval_required = $15,
			has_public_bans = $16, has_public_peers = $17
		WHERE host = $1
	`,
		i.Host, i.Title, i.ShortDescription, i.Email, i.Thumbnail,
		i.Software, i.SoftwareVersion, i.MastodonVersion, i.NodeinfoVersion, i.Version,
		i.CurrentUserCount, i.CurrentStatusCount, i.CurrentDomainCount,
		i.RegistrationOpen, i.ApprovalRequired, i.HasPublicBans, i.HasPublicPeers,
	)
	if err != nil {
		return fmt.Errorf("store: update_descriptive_fields: %w", err)
	}
	return nil
}

// SetLastIngestPeers stamps the time peers were last refreshed for host.
func (s *Store) SetLastIngestPeers(ctx context.Context, host string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE instance SET last_ingest_peers = $2 WHERE host = $1`, host, now)
	if err != nil {
		return fmt.Errorf("store: set_last_ingest_peers: %w", err)
	}
	return nil
}

// AppendInstanceStats inserts an append-only snapshot row.
func (s *Store) AppendInstanceStats(ctx context.Context, stats model.InstanceStats) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO instance_stats (host, ingest_time, user_count, status_count, domain_count, active_monthly_users)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (host, ingest_time) DO NOTHING
	`, stats.Host, stats.IngestTime, stats.UserCount, stats.StatusCount, stats.DomainCount, stats.ActiveMonthlyUsers)
	if err != nil {
		return fmt.Errorf("store: append_instance_stats: %w", err)
	}
	return nil
}

// UpsertASN inserts or updates an ASN row's cc/company/owner/prefix
// (spec.md §4.9).
func (s *Store) UpsertASN(ctx context.Context, asn model.ASN) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO asn (asn, cc, owner, company, prefix)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asn) DO UPDATE SET
			cc = EXCLUDED.cc, owner = EXCLUDED.owner,
			company = EXCLUDED.company, prefix = EXCLUDED.prefix
	`, asn.ASN, asn.CC, asn.Owner, asn.Company, asn.Prefix)
	if err != nil {
		return fmt.Errorf("store: upsert_asn: %w", err)
	}
	return nil
}

// InsertEvil adds domain suffixes to the permanent evil set, ignoring
// conflicts (spec.md §4.9).
func (s *Store) InsertEvil(ctx context.Context, domains []string) error {
	for _, d := range domains {
		_, err := s.pool.Exec(ctx, `INSERT INTO evil (domain) VALUES ($1) ON CONFLICT DO NOTHING`, d)
		if err != nil {
			return fmt.Errorf("store: insert_evil: %w", err)
		}
	}
	return nil
}

// EvilDomains returns the full permanent evil set.
func (s *Store) EvilDomains(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT domain FROM evil`)
	if err != nil {
		return nil, fmt.Errorf("store: evil_domains: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("store: evil_domains scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPeers returns the current peer_host set for host (spec.md §4.9's
// read side of replace_peers).
func (s *Store) ListPeers(ctx context.Context, host string) ([]model.Peer, error) {
	rows, err := s.pool.Query(ctx, `SELECT host, peer_host, ingest_id FROM peer WHERE host = $1 ORDER BY peer_host`, host)
	if err != nil {
		return nil, fmt.Errorf("store: list_peers: %w", err)
	}
	defer rows.Close()

	var out []model.Peer
	for rows.Next() {
		var p model.Peer
		if err := rows.Scan(&p.Host, &p.PeerHost, &p.IngestID); err != nil {
			return nil, fmt.Errorf("store: list_peers scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListBans returns the current banned_host set published by host.
func (s *Store) ListBans(ctx context.Context, host string) ([]model.Ban, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT host, banned_host, severity, comment, digest, keywords, ingest_id
		FROM ban WHERE host = $1 ORDER BY banned_host
	`, host)
	if err != nil {
		return nil, fmt.Errorf("store: list_bans: %w", err)
	}
	defer rows.Close()

	var out []model.Ban
	for rows.Next() {
		var b model.Ban
		if err := rows.Scan(&b.Host, &b.BannedHost, &b.Severity, &b.Comment, &b.Digest, &b.Keywords, &b.IngestID); err != nil {
			return nil, fmt.Errorf("store: list_bans scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// VacuumDatabase runs Postgres maintenance over the tables fedimapper
// writes (instance, instance_stats, peer, ban, asn, evil), replacing the
// teacher's cron-driven util/cleandb.go for a Postgres-backed store.
func (s *Store) VacuumDatabase(ctx context.Context) error {
	for _, table := range []string{"instance", "instance_stats", "peer", "ban", "asn", "evil"} {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("VACUUM ANALYZE %s", table)); err != nil {
			return fmt.Errorf("store: vacuum_database(%s): %w", table, err)
		}
	}
	return nil
}

// EnsureBootstrap inserts each host in hosts as a bare Instance row,
// ignoring conflicts (spec.md §4.10's selection-policy bootstrap step).
func (s *Store) EnsureBootstrap(ctx context.Context, hosts []string, baseDomainOf func(string) string) error {
	for _, h := range hosts {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO instance (host, digest, base_domain, www_host)
			VALUES ($1, $2, $3, $1)
			ON CONFLICT (host) DO NOTHING
		`, h, Digest(h), baseDomainOf(h))
		if err != nil {
			return fmt.Errorf("store: ensure_bootstrap: %w", err)
		}
	}
	return nil
}
