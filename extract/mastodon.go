package extract

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/version"
)

// mastodonInstanceResponse is the subset of `/api/v1/instance` fedimapper
// reads (spec.md §4.5, §6).
type mastodonInstanceResponse struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Email            string `json:"email"`
	Thumbnail        string `json:"thumbnail"`
	Version          string `json:"version"`
	Registrations    bool   `json:"registrations"`
	ApprovalRequired bool   `json:"approval_required"`
	Stats            struct {
		UserCount   *int `json:"user_count"`
		StatusCount *int `json:"status_count"`
		DomainCount *int `json:"domain_count"`
	} `json:"stats"`
}

type domainBlock struct {
	Domain   string `json:"domain"`
	Digest   string `json:"digest"`
	Severity string `json:"severity"`
	Comment  string `json:"comment"`
}

// Mastodon implements the Mastodon-compatible extractor (spec.md §4.5).
// Most fediverse software that isn't explicitly one of the other three
// protocols speaks this API, which is why C7 dispatches to it by default.
type Mastodon struct{}

func (Mastodon) Extract(ctx context.Context, ectx *Context, host string, nodeinfo *Nodeinfo) (bool, error) {
	var resp mastodonInstanceResponse
	_, err := ectx.Fetcher.FetchJSON("https://"+host+"/api/v1/instance", safefetch.FetchOptions{ValidateRobots: true}, &resp)
	if err != nil {
		return false, nil
	}

	parsed := version.Parse(resp.Version)

	inst := model.Instance{
		Host:             host,
		Title:            model.StringPtr(resp.Title),
		ShortDescription: model.StringPtr(resp.ShortDescription),
		Email:            model.StringPtr(resp.Email),
		Thumbnail:        model.StringPtr(resp.Thumbnail),
		Version:          model.StringPtr(resp.Version),
		MastodonVersion:  parsed.MastodonVersion,
		Software:         parsed.Software,
		SoftwareVersion:  parsed.SoftwareVersion,
		RegistrationOpen: model.BoolPtr(resp.Registrations),
		ApprovalRequired: model.BoolPtr(resp.ApprovalRequired),

		CurrentUserCount:   capped(resp.Stats.UserCount, version.MaxUserCount),
		CurrentStatusCount: capped(resp.Stats.StatusCount, version.MaxPostCount),
		CurrentDomainCount: resp.Stats.DomainCount,
	}

	// Prefer nodeinfo's software identity when it's available, but always
	// keep the mastodon_version this parse extracted (spec.md §4.5).
	if nodeinfo != nil && nodeinfo.Software.Name != "" {
		inst.Software = model.StringPtr(strings.ToLower(nodeinfo.Software.Name))
		inst.SoftwareVersion = model.StringPtr(nodeinfo.Software.Version)
	}

	hasBans, err := ectx.fetchAndReplaceBans(ctx, host)
	if err != nil {
		return false, err
	}
	inst.HasPublicBans = model.BoolPtr(hasBans)

	if peerRefreshDue(ectx.lastIngestPeers(host), ectx.Now) {
		hasPeers, err := ectx.fetchAndReplacePeers(ctx, host)
		if err != nil {
			return false, err
		}
		inst.HasPublicPeers = model.BoolPtr(hasPeers)
		if err := ectx.Store.SetLastIngestPeers(ctx, host, ectx.Now); err != nil {
			return false, err
		}
	}

	if err := ectx.Store.UpdateDescriptiveFields(ctx, inst); err != nil {
		return false, err
	}

	stats := model.InstanceStats{
		Host:        host,
		IngestTime:  ectx.Now,
		UserCount:   inst.CurrentUserCount,
		StatusCount: inst.CurrentStatusCount,
		DomainCount: inst.CurrentDomainCount,
	}
	if err := ectx.Store.AppendInstanceStats(ctx, stats); err != nil {
		return false, err
	}

	return true, nil
}

// peerRefreshDue implements spec.md §4.7's gating rule: refresh when
// never done, older than refreshPeersHours, or — with probability 1/7 —
// older than half that, to spread load.
func peerRefreshDue(lastIngestPeers *time.Time, now time.Time) bool {
	if lastIngestPeers == nil {
		return true
	}
	age := now.Sub(*lastIngestPeers)
	if age > refreshPeersInterval {
		return true
	}
	if age > refreshPeersInterval/2 && rand.Intn(7) == 0 {
		return true
	}
	return false
}

// refreshPeersInterval is set by the orchestrator at construction time
// (see ingest.Orchestrator); declared here as a package variable since
// peerRefreshDue is a pure helper shared by every extractor that fetches
// peers.
var refreshPeersInterval = 12 * time.Hour

// SetRefreshPeersInterval configures the peer-refresh gating window
// (spec.md §4.7's refresh_peers_hours), called once at orchestrator
// construction.
func SetRefreshPeersInterval(d time.Duration) {
	refreshPeersInterval = d
}

func (e *Context) lastIngestPeers(host string) *time.Time {
	inst, err := e.Store.GetInstance(context.Background(), host)
	if err != nil || inst == nil {
		return nil
	}
	return inst.LastIngestPeers
}

func (e *Context) fetchAndReplaceBans(ctx context.Context, host string) (bool, error) {
	var blocks []domainBlock
	_, err := e.Fetcher.FetchJSON(fmt.Sprintf("https://%s/api/v1/instance/domain_blocks", host), safefetch.FetchOptions{ValidateRobots: true}, &blocks)
	if err != nil {
		if err := e.Store.ReplaceBans(ctx, host, nil, e.IngestID); err != nil {
			return false, err
		}
		return false, nil
	}

	kept, spamDomains := dampenSpamKeyed(e, blocks, func(b domainBlock) string { return b.Domain })
	for domain := range spamDomains {
		logrus.WithFields(logrus.Fields{"host": host, "domain": domain}).
			Debug("spam domain detected in ban list, dropping for this ingest")
	}

	var bans []model.Ban
	for _, b := range kept {
		if e.IsEvil(b.Domain) {
			continue
		}
		kw := e.Keywords.Extract("en", b.Comment)
		var keywords []string
		for k := range kw {
			keywords = append(keywords, k)
		}
		bans = append(bans, model.Ban{
			Host:       host,
			BannedHost: b.Domain,
			Severity:   b.Severity,
			Comment:    model.StringPtr(b.Comment),
			Digest:     model.StringPtr(b.Digest),
			Keywords:   keywords,
			IngestID:   e.IngestID,
		})
	}

	if err := e.Store.ReplaceBans(ctx, host, bans, e.IngestID); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Context) fetchAndReplacePeers(ctx context.Context, host string) (bool, error) {
	var peers []string
	_, err := e.Fetcher.FetchJSON(fmt.Sprintf("https://%s/api/v1/instance/peers", host), safefetch.FetchOptions{ValidateRobots: true}, &peers)
	if err != nil {
		return false, nil
	}

	kept, _ := dampenSpamKeyed(e, peers, func(p string) string { return p })

	var filtered []string
	for _, p := range kept {
		if e.IsEvil(p) {
			continue
		}
		filtered = append(filtered, p)
	}

	if err := e.Store.ReplacePeers(ctx, host, filtered, e.IngestID, e.BaseDomainOf); err != nil {
		return false, err
	}
	return true, nil
}
