package safefetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRobotsCacheDisallowOn403(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	c := NewRobotsCache(f, "fedimapper-test", 128, 1800*time.Second)
	assert.False(t, c.Allowed(srv.URL, "/anything"))
}

func TestRobotsCacheAllowOnOther4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	c := NewRobotsCache(f, "fedimapper-test", 128, 1800*time.Second)
	assert.True(t, c.Allowed(srv.URL, "/anything"))
}

func TestRobotsCacheParsesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	c := NewRobotsCache(f, "fedimapper-test", 128, 1800*time.Second)
	assert.False(t, c.Allowed(srv.URL, "/admin/secret"))
	assert.True(t, c.Allowed(srv.URL, "/public"))
}

func TestRobotsCacheCachesByOrigin(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("User-agent: *\n"))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	c := NewRobotsCache(f, "fedimapper-test", 128, 1800*time.Second)
	c.Allowed(srv.URL, "/a")
	c.Allowed(srv.URL, "/b")
	assert.Equal(t, 1, hits)
}
