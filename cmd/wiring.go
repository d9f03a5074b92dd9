package cmd

import (
	"context"
	"time"

	"github.com/tedivm/fedimapper/config"
	"github.com/tedivm/fedimapper/ingest"
	"github.com/tedivm/fedimapper/keywords"
	"github.com/tedivm/fedimapper/netprobe"
	"github.com/tedivm/fedimapper/safefetch"
	"github.com/tedivm/fedimapper/store"
)

// buildFetcher constructs the safe fetcher with its robots cache wired in,
// grounded on the config-driven construction the teacher's FetchManager
// does in cmd.Execute's setup path.
func buildFetcher(s config.Settings) *safefetch.Fetcher {
	fetcher := safefetch.New(s.CrawlerUserAgent)
	fetcher.Robots = safefetch.NewRobotsCache(fetcher, s.CrawlerUserAgent, s.Robots.CacheEntries, s.RobotsCacheTTLDuration())
	return fetcher
}

// buildOrchestrator wires a fresh Orchestrator from process-wide settings
// and an already-open store, including the Team Cymru ASN lookup client
// (see DESIGN.md).
func buildOrchestrator(s config.Settings, st *store.Store) *ingest.Orchestrator {
	return ingest.New(buildFetcher(s), st, netprobe.NewCymruLookup(), keywords.English{}, s)
}

func openStore(ctx context.Context, s config.Settings) (*store.Store, error) {
	return store.Open(ctx, s.DatabaseURL, s.BulkInsertBuffer)
}

const cliTimeout = 30 * time.Second
