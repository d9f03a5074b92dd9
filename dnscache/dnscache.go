// Package dnscache wraps a net.Dial-type function with its own version that
// caches DNS resolutions, sparing the safe fetcher a fresh lookup every time
// it re-fetches a host it already resolved recently (spec.md §4.7's dns
// step is pure resolution and runs independently of this, but every HTTP
// round trip safefetch makes re-dials through net/http's own resolver
// unless this cache sits underneath it).
package dnscache

import (
	"net"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Dial wraps the given dial function with caching of DNS resolutions. When a
// hostname is found in the cache it calls the provided dial with the IP
// address instead of the hostname, so no DNS lookup need be performed. It
// also caches DNS failures.
//
// If the given wrappedDial is nil, net.Dial is used.
func Dial(wrappedDial func(network, addr string) (net.Conn, error), maxEntries int) (func(network, addr string) (net.Conn, error), error) {
	if wrappedDial == nil {
		wrappedDial = net.Dial
	}
	cache, err := lru.New[string, hostrecord](maxEntries)
	if err != nil {
		return nil, err
	}
	c := &dnsCache{
		wrappedDial: wrappedDial,
		cache:       cache,
	}
	return c.cachingDial, nil
}

// dnsCache wraps a net.Dial-type function with its own version that caches
// DNS entries in an LRU cache.
type dnsCache struct {
	wrappedDial func(network, address string) (net.Conn, error)
	cache       *lru.Cache[string, hostrecord]
	mu          sync.RWMutex
}

type hostrecord struct {
	ipaddr      string
	blacklisted bool
	err         error
	lastQuery   time.Time
}

func (c *dnsCache) cachingDial(network, addr string) (net.Conn, error) {
	mapEntryName := network + addr
	c.mu.RLock()
	if record, ok := c.cache.Get(mapEntryName); ok {
		if time.Since(record.lastQuery) > 5*time.Minute {
			c.mu.RUnlock()
			c.cacheHost(network, addr)
			c.mu.RLock()
			record, _ = c.cache.Get(mapEntryName)
		}
		resolvedAddr := record.ipaddr
		if record.blacklisted {
			returnErr := record.err
			c.mu.RUnlock()
			return nil, returnErr
		}

		c.mu.RUnlock()
		return c.wrappedDial(network, resolvedAddr)
	}
	c.mu.RUnlock()
	return c.cacheHost(network, addr)
}

// cacheHost caches the DNS lookup for this host, overwriting any entry
// that may have previously existed.
func (c *dnsCache) cacheHost(network, addr string) (net.Conn, error) {
	mapEntryName := network + addr
	newConn, err := c.wrappedDial(network, addr)
	queryTime := time.Now()
	c.mu.Lock()
	if err != nil {
		c.cache.Add(mapEntryName, hostrecord{
			blacklisted: true,
			err:         err,
			lastQuery:   queryTime,
		})
		c.mu.Unlock()
		return nil, err
	}
	remoteipaddr := newConn.RemoteAddr().String()
	c.cache.Add(mapEntryName, hostrecord{
		ipaddr:    remoteipaddr,
		lastQuery: queryTime,
	})
	c.mu.Unlock()
	return newConn, nil
}
