// Package extract implements the protocol-specific extractors (C5 in
// spec.md §4.5): nodeinfo, mastodon, peertube, and diaspora. Each
// extractor implements the common Extractor contract and is responsible
// for populating the instance's normalized fields and persisting any
// peers/bans it discovers. Grounded on the teacher's Handler interface
// (fetcher.go) for the "one capability, one small interface" shape, and
// on fedimapper/tasks/ingesters/*.py for the per-protocol field mapping.
package extract

import (
	"context"
	"time"

	"github.com/tedivm/fedimapper/keywords"
	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/store"
)

// Nodeinfo is the decoded `/.well-known/nodeinfo` target document, shared
// across extractors since every protocol's dispatch decision and several
// extractors' field sourcing depend on it (spec.md §4.5, §6).
type Nodeinfo struct {
	Software struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"software"`
	Usage struct {
		Users struct {
			Total         *int `json:"total"`
			ActiveHalfyear *int `json:"activeHalfyear"`
			ActiveMonth   *int `json:"activeMonth"`
		} `json:"users"`
		LocalPosts    *int `json:"localPosts"`
		LocalComments *int `json:"localComments"`
	} `json:"usage"`
	OpenRegistrations bool `json:"openRegistrations"`
	Protocols         []string `json:"protocols"`
	Metadata          map[string]any `json:"metadata"`
}

// nodeinfoDiscovery is the `/.well-known/nodeinfo` document's shape: a
// list of links, the last of which points at the real document (spec.md
// §6).
type nodeinfoDiscovery struct {
	Links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// Context bundles everything an extractor needs: the bounded fetcher, the
// store adapter, the keyword extractor for ban comments, an ingest id
// unique to this attempt, the evil-domain filter built for this ingest,
// and a base-domain resolver (normally fld.Resolve).
type Context struct {
	Fetcher      *safefetch.Fetcher
	Store        *store.Store
	Keywords     keywords.Extractor
	IngestID     string
	Now          time.Time
	BaseDomainOf func(string) string
	IsEvil       func(host string) bool

	// OnSpamDomain is called for every registrable domain the spam
	// dampener drops from a ban/peer list this ingest (spec.md §4.7); the
	// orchestrator uses it to grow its in-memory evil set.
	OnSpamDomain func(domain string)

	SpamDomainThreshold int
}

// Extractor is the common contract every protocol implementation
// satisfies (spec.md §4.5): return true when this extractor successfully
// identified and populated the host, false to let the orchestrator try
// the next strategy.
type Extractor interface {
	Extract(ctx context.Context, ectx *Context, host string, nodeinfo *Nodeinfo) (bool, error)
}

// ByName is the dispatch table the orchestrator consults, keyed by
// nodeinfo's software.name (spec.md §4.7 step 8).
var ByName = map[string]Extractor{
	"diaspora": Diaspora{},
	"mastodon": Mastodon{},
	"nodeinfo": Generic{},
	"peertube": PeerTube{},
}

// FetchNodeinfo performs the two-step nodeinfo discovery described in
// spec.md §4.5/§6: GET /.well-known/nodeinfo, take the last link's href,
// fetch that document. Returns nil when discovery or fetch fails;
// callers treat that as "nodeinfo unavailable", not a hard error.
func FetchNodeinfo(fetcher *safefetch.Fetcher, host string) *Nodeinfo {
	var discovery nodeinfoDiscovery
	_, err := fetcher.FetchJSON("https://"+host+"/.well-known/nodeinfo", safefetch.FetchOptions{
		ValidateRobots: true,
	}, &discovery)
	if err != nil || len(discovery.Links) == 0 {
		return nil
	}

	href := discovery.Links[len(discovery.Links)-1].Href

	var doc Nodeinfo
	_, err = fetcher.FetchJSON(href, safefetch.FetchOptions{ValidateRobots: true}, &doc)
	if err != nil {
		return nil
	}
	return &doc
}
