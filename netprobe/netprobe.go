// Package netprobe implements the network probe (C4 in spec.md §4.4):
// DNS resolution, ASN lookup, and HTTPS reachability classification. DNS
// resolution is grounded on the teacher's dnscache package (the same
// net.Resolver-backed approach, without the dialer-wrapping since nothing
// here needs a cached Dial); reachability classification is grounded on
// fedimapper/services/networking.py's can_access_https.
package netprobe

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/tedivm/fedimapper/safefetch"
)

// Resolve performs a standard A/AAAA lookup. Any failure, including no
// records found, returns ("", false) per spec.md §4.4.
func Resolve(ctx context.Context, host string) (string, bool) {
	resolver := net.DefaultResolver
	addrs, err := resolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		return "", false
	}
	return addrs[0], true
}

// ASNRecord is the routing-level ownership data for an IP (spec.md §3).
type ASNRecord struct {
	ASN    string
	CC     string
	Owner  string
	Prefix string
}

// ASNLookup queries an external whois-style service for an IP's
// originating ASN. CymruLookup in this package is the shipped
// implementation; the interface exists so the orchestrator's construction
// site can swap it out, the same seam the teacher uses for its own
// Datastore/Handler interfaces.
type ASNLookup interface {
	Lookup(ctx context.Context, ip string) (*ASNRecord, error)
}

// parkingMarkers are substrings in a reachability probe's body that signal
// the domain has been parked or decommissioned (spec.md §4.4).
var parkingMarkers = []string{"domain parking", "ERR_NGROK_3200"}

// Reachability is the outcome of CanAccessHTTPS.
type Reachability struct {
	Reachable  bool
	StatusCode int
	Parked     bool
}

// CanAccessHTTPS performs an anonymous GET of https://host/ via fetcher
// with validate_robots=false and a 1s timeout, per spec.md §4.4.
func CanAccessHTTPS(fetcher *safefetch.Fetcher, host string) Reachability {
	result, err := fetcher.Fetch("https://"+host+"/", safefetch.FetchOptions{
		MaxBytes:       512 * 1024,
		MaxSeconds:     1 * time.Second,
		ValidateRobots: false,
	})
	if err != nil {
		return Reachability{Reachable: false}
	}
	if safefetch.IsUnreachableStatus(result.StatusCode) {
		return Reachability{Reachable: false, StatusCode: result.StatusCode}
	}

	body := strings.ToLower(string(result.Body))
	parked := false
	for _, marker := range parkingMarkers {
		if strings.Contains(body, strings.ToLower(marker)) {
			parked = true
			break
		}
	}

	return Reachability{Reachable: true, StatusCode: result.StatusCode, Parked: parked}
}
