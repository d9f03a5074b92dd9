package netprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tedivm/fedimapper/safefetch"
)

func TestResolveLocalhostSucceeds(t *testing.T) {
	ip, ok := Resolve(context.Background(), "localhost")
	assert.True(t, ok)
	assert.NotEmpty(t, ip)
}

func TestResolveBogusHostFails(t *testing.T) {
	_, ok := Resolve(context.Background(), "this-host-should-not-exist.invalid")
	assert.False(t, ok)
}

func TestCanAccessHTTPSDetectsParkingBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>this domain parking service brought to you by...</html>"))
	}))
	defer srv.Close()

	fetcher := safefetch.New("fedimapper-test")
	// CanAccessHTTPS always requests https://host/, so use a TLS test
	// server and its client, which trusts the server's certificate.
	fetcher.Client = srv.Client()

	reach := CanAccessHTTPS(fetcher, srv.Listener.Addr().String())
	assert.True(t, reach.Reachable)
	assert.True(t, reach.Parked)
}

func TestCanAccessHTTPSUnreachableOn404(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := safefetch.New("fedimapper-test")
	fetcher.Client = srv.Client()

	assert.True(t, safefetch.IsUnreachableStatus(http.StatusNotFound))
	reach := CanAccessHTTPS(fetcher, srv.Listener.Addr().String())
	assert.False(t, reach.Reachable)
	assert.Equal(t, http.StatusNotFound, reach.StatusCode)
}
