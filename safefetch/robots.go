package safefetch

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/temoto/robotstxt"
)

// allowAllGroup and disallowAllGroup are synthesized policies for hosts
// whose robots.txt fetch returned a status code C2 maps to a fixed
// decision rather than a parsed document (spec.md §4.2).
var (
	allowAllGroup    = mustGroup("User-agent: *\n")
	disallowAllGroup = mustGroup("User-agent: *\nDisallow: /\n")
)

func mustGroup(body string) *robotstxt.Group {
	data, err := robotstxt.FromBytes([]byte(body))
	if err != nil {
		panic(err)
	}
	return data.FindGroup("*")
}

// RobotsCache is a TTL-bounded, bounded-size cache of parsed robots.txt
// policies keyed by origin (scheme://host[:port]), grounded on the
// teacher's fetcher.go robotsMap/getRobots/fetchRobots trio but made
// concurrency-safe and independent of any single crawl's lifetime, using
// hashicorp/golang-lru's expirable LRU for the TTL+bound semantics.
type RobotsCache struct {
	mu      sync.Mutex
	cache   *lru.LRU[string, *robotstxt.Group]
	fetcher *Fetcher
	agent   string
}

// NewRobotsCache builds a cache with the given capacity and TTL. fetcher is
// used to retrieve /robots.txt with validate_robots=false, avoiding
// recursion into the cache it backs.
func NewRobotsCache(fetcher *Fetcher, agent string, capacity int, ttl time.Duration) *RobotsCache {
	return &RobotsCache{
		cache:   lru.NewLRU[string, *robotstxt.Group](capacity, nil, ttl),
		fetcher: fetcher,
		agent:   agent,
	}
}

// Allowed reports whether path is permitted for origin under the cached (or
// freshly fetched) robots policy. origin is "scheme://host[:port]".
func (c *RobotsCache) Allowed(origin, path string) bool {
	return c.groupFor(origin).Test(path)
}

func (c *RobotsCache) groupFor(origin string) *robotstxt.Group {
	c.mu.Lock()
	if g, ok := c.cache.Get(origin); ok {
		c.mu.Unlock()
		return g
	}
	c.mu.Unlock()

	// Concurrent misses may issue concurrent fetches; last write wins, per
	// spec.md §4.2.
	g := c.fetch(origin)
	c.mu.Lock()
	c.cache.Add(origin, g)
	c.mu.Unlock()
	return g
}

func (c *RobotsCache) fetch(origin string) *robotstxt.Group {
	result, err := c.fetcher.Fetch(fmt.Sprintf("%s/robots.txt", origin), FetchOptions{
		MaxBytes:       512 * 1024,
		MaxSeconds:     10 * time.Second,
		ValidateRobots: false,
	})

	switch {
	case err != nil:
		// Transport failure or any of the safety-cap errors: treat as if
		// no robots.txt exists.
		return allowAllGroup
	case result.StatusCode == 401 || result.StatusCode == 403:
		return disallowAllGroup
	case result.StatusCode >= 400:
		return allowAllGroup
	case result.StatusCode >= 200 && result.StatusCode < 300:
		data, err := robotstxt.FromBytes(result.Body)
		if err != nil {
			return allowAllGroup
		}
		grp := data.FindGroup(c.agent)
		if grp == nil {
			return allowAllGroup
		}
		return grp
	default:
		return allowAllGroup
	}
}
