package safefetch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSetsUserAgent(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	result, err := f.Fetch(srv.URL, FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "fedimapper-test", seen)
	assert.Equal(t, "ok", string(result.Body))
}

func TestFetchRejectsOversizedContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "999999999")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	result, err := f.Fetch(srv.URL, FetchOptions{MaxBytes: 10, MaxSeconds: time.Second})
	require.NoError(t, err)
	assert.Empty(t, result.Body)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetchFailsOnOversizedStreamedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
		// Flush before the handler returns so net/http switches to chunked
		// encoding instead of advertising a Content-Length for the body.
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	_, err := f.Fetch(srv.URL, FetchOptions{MaxBytes: 10, MaxSeconds: time.Second})
	assert.ErrorIs(t, err, ErrExcessivelyLargeRequest)
}

func TestFetchDoesNotFollowRedirectsByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/from" {
			http.Redirect(w, r, "/to", http.StatusFound)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	result, err := f.Fetch(srv.URL+"/from", FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, result.StatusCode)
}

func TestFetchJSONEmptyBodyFailsWithNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	var v map[string]any
	_, err := f.FetchJSON(srv.URL, FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second}, &v)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFetchJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hello":"world"}`))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	var v map[string]string
	_, err := f.FetchJSON(srv.URL, FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second}, &v)
	require.NoError(t, err)
	assert.Equal(t, "world", v["hello"])
}

func TestFetchHonorsRobotsWhenValidating(t *testing.T) {
	robotsHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits++
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New("fedimapper-test")
	f.Robots = NewRobotsCache(f, "fedimapper-test", 128, 1800*time.Second)

	_, err := f.Fetch(srv.URL+"/private", FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second, ValidateRobots: true})
	assert.ErrorIs(t, err, ErrRobotBlocked)

	result, err := f.Fetch(srv.URL+"/public", FetchOptions{MaxBytes: 1024, MaxSeconds: time.Second, ValidateRobots: true})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(result.Body))
	assert.Equal(t, 1, robotsHits)
}

func TestIsUnreachableStatus(t *testing.T) {
	cases := map[int]bool{404: true, 500: true, 520: true, 521: false, 200: false, 403: false}
	for code, want := range cases {
		t.Run(fmt.Sprintf("%d", code), func(t *testing.T) {
			assert.Equal(t, want, IsUnreachableStatus(code))
		})
	}
}
