// Package selection implements the host selection policy (C10 in
// spec.md §4.10): the writer side the scheduler asks for candidate hosts.
// Grounded on the teacher's dispatcher.go, which drives crawl targets from
// a Datastore query in priority order; here the three explicit freshness
// tiers replace the teacher's single link-queue query.
package selection

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HostSource is the subset of the store the policy needs. Defined here,
// not in package store, so Policy can be tested against a fake.
type HostSource interface {
	EnsureBootstrap(ctx context.Context, hosts []string, baseDomainOf func(string) string) error
	UnscannedHosts(ctx context.Context, limit int) ([]string, error)
	StaleHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	UnreachableHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// Policy yields candidate hosts to the coordinator on demand, per
// spec.md §4.10.
type Policy struct {
	source                 HostSource
	bootstrapHosts         []string
	baseDomainOf           func(string) string
	staleRescanInterval    time.Duration
	unreachableRescanInterval time.Duration

	bootstrapOnce sync.Once
	bootstrapErr  error
}

// New builds a Policy. baseDomainOf computes a host's registrable domain
// (normally fld.Resolve) and is injected to keep this package free of a
// direct dependency on fld.
func New(source HostSource, bootstrapHosts []string, baseDomainOf func(string) string, staleRescan, unreachableRescan time.Duration) *Policy {
	return &Policy{
		source:                    source,
		bootstrapHosts:            bootstrapHosts,
		baseDomainOf:              baseDomainOf,
		staleRescanInterval:       staleRescan,
		unreachableRescanInterval: unreachableRescan,
	}
}

// Next returns up to demand hosts, querying the three tiers in order and
// never yielding the same host twice within a single call (spec.md §8).
// now is injected so tests can control tier cutoffs deterministically.
func (p *Policy) Next(ctx context.Context, demand int, now time.Time) ([]string, error) {
	p.bootstrapOnce.Do(func() {
		p.bootstrapErr = p.source.EnsureBootstrap(ctx, p.bootstrapHosts, p.baseDomainOf)
	})
	if p.bootstrapErr != nil {
		return nil, fmt.Errorf("selection: bootstrap: %w", p.bootstrapErr)
	}

	remaining := demand
	var hosts []string

	unscanned, err := p.source.UnscannedHosts(ctx, remaining)
	if err != nil {
		return nil, fmt.Errorf("selection: unscanned tier: %w", err)
	}
	hosts = append(hosts, unscanned...)
	remaining -= len(unscanned)
	if remaining <= 0 {
		return hosts, nil
	}

	stale, err := p.source.StaleHosts(ctx, now.Add(-p.staleRescanInterval), remaining)
	if err != nil {
		return nil, fmt.Errorf("selection: stale tier: %w", err)
	}
	hosts = append(hosts, stale...)
	remaining -= len(stale)
	if remaining <= 0 {
		return hosts, nil
	}

	unreachable, err := p.source.UnreachableHosts(ctx, now.Add(-p.unreachableRescanInterval), remaining)
	if err != nil {
		return nil, fmt.Errorf("selection: unreachable tier: %w", err)
	}
	hosts = append(hosts, unreachable...)

	return hosts, nil
}
