package extract

import (
	"context"
	"strings"

	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/version"
)

// Generic is the nodeinfo base extractor (spec.md §4.5): it never fetches
// peers or bans (nodeinfo alone carries no such endpoints) and exists both
// as a dispatch target and as the fallback every other extractor's
// failure defers to.
type Generic struct{}

// Extract populates the fields obtainable from nodeinfo alone. It always
// returns true when doc is non-nil: nodeinfo fetch success is itself
// sufficient identification (spec.md §4.7 step 10's fallback relies on
// this).
func (Generic) Extract(ctx context.Context, ectx *Context, host string, doc *Nodeinfo) (bool, error) {
	if doc == nil {
		return false, nil
	}

	inst := model.Instance{
		Host:            host,
		Software:        model.StringPtr(strings.ToLower(doc.Software.Name)),
		SoftwareVersion: model.StringPtr(doc.Software.Version),
		NodeinfoVersion: model.StringPtr(doc.Software.Version),
		Version:         model.StringPtr(doc.Software.Version),
	}

	inst.CurrentUserCount = capped(doc.Usage.Users.Total, version.MaxUserCount)
	inst.CurrentStatusCount = capped(doc.Usage.LocalPosts, version.MaxPostCount)

	activeMonthly := capped(doc.Usage.Users.ActiveMonth, version.MaxActiveUsers)

	inst.HasPublicBans = model.BoolPtr(false)
	inst.HasPublicPeers = model.BoolPtr(false)
	inst.RegistrationOpen = model.BoolPtr(doc.OpenRegistrations)

	if err := ectx.Store.UpdateDescriptiveFields(ctx, inst); err != nil {
		return false, err
	}

	stats := model.InstanceStats{
		Host:               host,
		IngestTime:         ectx.Now,
		UserCount:          inst.CurrentUserCount,
		StatusCount:        inst.CurrentStatusCount,
		ActiveMonthlyUsers: activeMonthly,
	}
	if err := ectx.Store.AppendInstanceStats(ctx, stats); err != nil {
		return false, err
	}

	return true, nil
}

// capped returns nil if v is nil or exceeds cap, otherwise a copy of *v
// (spec.md §4.5's sanity-cap rule).
func capped(v *int, cap int) *int {
	if v == nil {
		return nil
	}
	return version.SanityCheck(*v, cap)
}
