package extract

import (
	"context"
	"fmt"

	"github.com/tedivm/fedimapper/model"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/version"
)

type peertubeConfigResponse struct {
	InstanceName        string `json:"instanceName"`
	ShortDescription    string `json:"shortDescription"`
	ServerVersion       string `json:"serverVersion"`
	Signup              struct {
		Allowed bool `json:"allowed"`
	} `json:"signup"`
}

type peertubeStatsResponse struct {
	TotalUsers        *int `json:"totalUsers"`
	TotalLocalVideos  *int `json:"totalLocalVideos"`
}

type peertubeFollower struct {
	Follower struct {
		Host string `json:"host"`
	} `json:"follower"`
}

type peertubeFollowersResponse struct {
	Data []peertubeFollower `json:"data"`
}

// PeerTube implements the PeerTube extractor (spec.md §4.5). PeerTube
// never publishes ban/block lists, so has_public_bans is always false.
type PeerTube struct{}

func (PeerTube) Extract(ctx context.Context, ectx *Context, host string, nodeinfo *Nodeinfo) (bool, error) {
	var cfg peertubeConfigResponse
	_, err := ectx.Fetcher.FetchJSON("https://"+host+"/api/v1/config", safefetch.FetchOptions{ValidateRobots: true}, &cfg)
	if err != nil {
		return false, nil
	}

	inst := model.Instance{
		Host:             host,
		Title:            model.StringPtr(cfg.InstanceName),
		ShortDescription: model.StringPtr(cfg.ShortDescription),
		Software:         model.StringPtr("peertube"),
		SoftwareVersion:  model.StringPtr(cfg.ServerVersion),
		Version:          model.StringPtr(cfg.ServerVersion),
		RegistrationOpen: model.BoolPtr(cfg.Signup.Allowed),
		HasPublicBans:    model.BoolPtr(false),
	}

	if nodeinfo != nil && nodeinfo.Usage.Users.Total != nil && nodeinfo.Usage.LocalPosts != nil {
		inst.CurrentUserCount = capped(nodeinfo.Usage.Users.Total, version.MaxUserCount)
		inst.CurrentStatusCount = capped(nodeinfo.Usage.LocalPosts, version.MaxPostCount)
	} else {
		var stats peertubeStatsResponse
		if _, err := ectx.Fetcher.FetchJSON(fmt.Sprintf("https://%s/api/v1/server/stats", host), safefetch.FetchOptions{ValidateRobots: true}, &stats); err == nil {
			inst.CurrentUserCount = capped(stats.TotalUsers, version.MaxUserCount)
			inst.CurrentStatusCount = capped(stats.TotalLocalVideos, version.MaxPostCount)
		}
	}

	hasPeers, err := ectx.fetchAndReplacePeerTubeFollowers(ctx, host)
	if err != nil {
		return false, err
	}
	inst.HasPublicPeers = model.BoolPtr(hasPeers)

	if err := ectx.Store.UpdateDescriptiveFields(ctx, inst); err != nil {
		return false, err
	}

	stats := model.InstanceStats{
		Host:        host,
		IngestTime:  ectx.Now,
		UserCount:   inst.CurrentUserCount,
		StatusCount: inst.CurrentStatusCount,
	}
	if err := ectx.Store.AppendInstanceStats(ctx, stats); err != nil {
		return false, err
	}

	return true, nil
}

func (e *Context) fetchAndReplacePeerTubeFollowers(ctx context.Context, host string) (bool, error) {
	var resp peertubeFollowersResponse
	_, err := e.Fetcher.FetchJSON(fmt.Sprintf("https://%s/api/v1/server/followers", host), safefetch.FetchOptions{ValidateRobots: true}, &resp)
	if err != nil {
		return false, nil
	}

	hosts := make([]string, 0, len(resp.Data))
	for _, f := range resp.Data {
		hosts = append(hosts, f.Follower.Host)
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
