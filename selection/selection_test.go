package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	bootstrapCalls int
	unscanned      []string
	stale          []string
	unreachable    []string
}

func (f *fakeSource) EnsureBootstrap(ctx context.Context, hosts []string, baseDomainOf func(string) string) error {
	f.bootstrapCalls++
	return nil
}

func (f *fakeSource) UnscannedHosts(ctx context.Context, limit int) ([]string, error) {
	return capAt(f.unscanned, limit), nil
}

func (f *fakeSource) StaleHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return capAt(f.stale, limit), nil
}

func (f *fakeSource) UnreachableHosts(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return capAt(f.unreachable, limit), nil
}

func capAt(hosts []string, limit int) []string {
	if limit <= 0 || limit >= len(hosts) {
		return hosts
	}
	return hosts[:limit]
}

func identity(h string) string { return h }

func TestNextYieldsUnscannedThenStaleThenUnreachable(t *testing.T) {
	src := &fakeSource{
		unscanned:   []string{"u.example"},
		stale:       []string{"s.example"},
		unreachable: []string{"r.example"},
	}
	p := New(src, nil, identity, time.Hour, 6*time.Hour)

	hosts, err := p.Next(context.Background(), 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"u.example", "s.example"}, hosts)
}

func TestNextRunsBootstrapOnlyOnce(t *testing.T) {
	src := &fakeSource{}
	p := New(src, []string{"mastodon.social"}, identity, time.Hour, 6*time.Hour)

	_, err := p.Next(context.Background(), 1, time.Now())
	require.NoError(t, err)
	_, err = p.Next(context.Background(), 1, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, src.bootstrapCalls)
}

func TestNextStopsWhenDemandSatisfiedByFirstTier(t *testing.T) {
	src := &fakeSource{
		unscanned: []string{"a.example", "b.example", "c.example"},
		stale:     []string{"should-not-appear.example"},
	}
	p := New(src, nil, identity, time.Hour, 6*time.Hour)

	hosts, err := p.Next(context.Background(), 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example", "b.example"}, hosts)
}
