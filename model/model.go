// Package model defines the relational data model described in spec.md §3:
// Instance, InstanceStats, Peer, Ban, and ASN. These are plain structs; all
// persistence semantics live in the store package, which also keeps the
// Evil suffix set as plain domain strings.
package model

import "time"

// Status is the enumerated set of terminal ingest outcomes an Instance row
// can carry in LastIngestStatus.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusUnreachable   Status = "unreachable"
	StatusUnknownService Status = "unknown_service"
	StatusNoDNS         Status = "no_dns"
	StatusDisabled      Status = "disabled"
	StatusCrawlError    Status = "crawl_error"
	StatusRobotsBlocked Status = "robots_blocked"
)

// unreachableStatuses is the set of statuses the selection policy's
// "unreachable" tier (spec.md §4.10) rescans, and that the "stale" tier
// excludes.
var unreachableStatuses = map[Status]bool{
	StatusUnreachable:    true,
	StatusUnknownService: true,
	StatusNoDNS:          true,
	StatusDisabled:       true,
	StatusCrawlError:     true,
	StatusRobotsBlocked:  true,
}

// IsUnreachableTier reports whether status belongs to the set of statuses
// the selection policy treats as "not currently healthy" (spec.md §4.10).
func IsUnreachableTier(status *Status) bool {
	if status == nil {
		return true
	}
	return unreachableStatuses[*status]
}

// Instance is the primary entity, keyed by Host (spec.md §3).
type Instance struct {
	Host       string
	Digest     string
	BaseDomain string
	WWWHost    string

	LastIngest        *time.Time
	LastIngestSuccess *time.Time
	FirstIngestSuccess *time.Time
	LastIngestPeers   *time.Time

	LastIngestStatus *Status

	Title            *string
	ShortDescription *string
	Email            *string
	Thumbnail        *string

	Software         *string
	SoftwareVersion  *string
	MastodonVersion  *string
	NodeinfoVersion  *string
	Version          *string

	CurrentUserCount   *int
	CurrentStatusCount *int
	CurrentDomainCount *int

	RegistrationOpen *bool
	ApprovalRequired *bool
	HasPublicBans    *bool
	HasPublicPeers   *bool

	IPAddress *string
	ASN       *string
}

// InstanceStats is an append-only time-series snapshot (spec.md §3). Never
// updated after insert.
type InstanceStats struct {
	Host               string
	IngestTime         time.Time
	UserCount          *int
	StatusCount        *int
	DomainCount        *int
	ActiveMonthlyUsers *int
}

// Peer is a directed host -> peer_host relation tagged by the ingest that
// produced it (spec.md §3).
type Peer struct {
	Host     string
	PeerHost string
	IngestID string
}

// Ban is a moderation action one instance publishes against another
// (spec.md §3). Digest is nullable and, per spec.md §9, excluded from the
// uniqueness constraint (host, banned_host).
type Ban struct {
	Host       string
	BannedHost string
	Severity   string
	Comment    *string
	Digest     *string
	Keywords   []string
	IngestID   string
}

// ASN is the routing-level owner of an IP prefix (spec.md §3).
type ASN struct {
	ASN     string
	CC      *string
	Owner   *string
	Company *string
	Prefix  *string
}

// StringPtr returns a pointer to s, or nil if s is empty. Convenience for
// building optional string fields from extractor code.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
