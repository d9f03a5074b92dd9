package extract

import (
	"context"
	"net"
	"strings"

	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/version"
)

type diasporaPod struct {
	Host string `json:"host"`
}

// Diaspora implements the Diaspora extractor (spec.md §4.5): it relies on
// nodeinfo for descriptive fields and adds `/pods.json` for peers,
// rejecting IP-literal pod entries. Diaspora never publishes ban lists.
type Diaspora struct{}

func (Diaspora) Extract(ctx context.Context, ectx *Context, host string, nodeinfo *Nodeinfo) (bool, error) {
	if nodeinfo == nil {
		return false, nil
	}

	inst := model.Instance{
		Host:            host,
		Software:        model.StringPtr("diaspora"),
		SoftwareVersion: model.StringPtr(nodeinfo.Software.Version),
		NodeinfoVersion: model.StringPtr(nodeinfo.Software.Version),
		Version:         model.StringPtr(nodeinfo.Software.Version),

		CurrentUserCount:   capped(nodeinfo.Usage.Users.Total, version.MaxUserCount),
		CurrentStatusCount: capped(nodeinfo.Usage.LocalPosts, version.MaxPostCount),
		RegistrationOpen:   model.BoolPtr(nodeinfo.OpenRegistrations),
		HasPublicBans:      model.BoolPtr(false),
	}

	hasPeers, err := ectx.fetchAndReplaceDiasporaPods(ctx, host)
	if err != nil {
		return false, err
	}
	inst.HasPublicPeers = model.BoolPtr(hasPeers)

	if err := ectx.Store.UpdateDescriptiveFields(ctx, inst); err != nil {
		return false, err
	}

	if err := ectx.Store.AppendInstanceStats(ctx, model.InstanceStats{
		Host:        host,
		IngestTime:  ectx.Now,
		UserCount:   inst.CurrentUserCount,
		StatusCount: inst.CurrentStatusCount,
	}); err != nil {
		return false, err
	}

	return true, nil
}

func (e *Context) fetchAndReplaceDiasporaPods(ctx context.Context, host string) (bool, error) {
	var pods []diasporaPod
	_, err := e.Fetcher.FetchJSON("https://"+host+"/pods.json", safefetch.FetchOptions{ValidateRobots: true}, &pods)
	if err != nil {
		return false, nil
	}

	hosts := make([]string, 0, len(pods))
	for _, p := range pods {
		if p.Host == "" || isIPLiteral(p.Host) {
			continue
		}
		hosts = append(hosts, p.Host)
	}

	kept, _ := dampenSpamKeyed(e, hosts, func(h string) string { return h })

	var filtered []string
	for _, h := range kept {
		if e.IsEvil(h) {
			continue
		}
		filtered = append(filtered, h)
	}

	if err := e.Store.ReplacePeers(ctx, host, filtered, e.IngestID, e.BaseDomainOf); err != nil {
		return false, err
	}
	return true, nil
}

func isIPLiteral(host string) bool {
	h := strings.Trim(host, "[]")
	return net.ParseIP(h) != nil
}
