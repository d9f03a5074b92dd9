// Package safefetch implements the bounded HTTP fetcher (C1) and its
// robots.txt cache (C2): every other component reaches the network only
// through a Fetcher, grounded on the teacher's fetcher.go request path but
// reworked from a link-crawling fetch/handler pipeline into a single
// bounded-GET primitive.
package safefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tedivm/fedimapper/dnscache"
)

// dnsCacheEntries bounds the dial-level DNS cache every Fetcher's
// transport shares; sized well above the working set of hosts a single
// crawl process touches per refresh window.
const dnsCacheEntries = 8192

// FetchOptions configures a single Fetch call (spec.md §4.1).
type FetchOptions struct {
	MaxBytes        int64
	MaxSeconds      time.Duration
	ValidateRobots  bool
	FollowRedirects bool
}

// DefaultFetchOptions mirrors the defaults named in spec.md §4.1.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		MaxBytes:        4 * 1024 * 1024,
		MaxSeconds:      10 * time.Second,
		ValidateRobots:  true,
		FollowRedirects: false,
	}
}

// Result is the outcome of a successful Fetch. Body is empty when the
// advertised Content-Length exceeded MaxBytes (the caller still receives
// headers and status).
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
}

// Fetcher issues bounded, single-purpose HTTP GETs on behalf of every other
// component. UserAgent is always sent, per spec.md §4.1. Robots, if set,
// backs validate_robots checks; it is attached after construction because
// RobotsCache itself holds a reference back to a Fetcher (with
// validate_robots forced off) to retrieve robots.txt bodies.
type Fetcher struct {
	UserAgent string
	Client    *http.Client
	Robots    *RobotsCache
}

// New builds a Fetcher. The underlying http.Client never follows redirects
// itself; FetchOptions.FollowRedirects is applied per-call via
// CheckRedirect so a single Fetcher can serve callers with different
// redirect policies. Dialing goes through dnscache so that re-fetching the
// same host across ingest cycles doesn't re-resolve it every time.
func New(userAgent string) *Fetcher {
	dial, err := dnscache.Dial((&net.Dialer{Timeout: 10 * time.Second}).Dial, dnsCacheEntries)
	if err != nil {
		dial = (&net.Dialer{Timeout: 10 * time.Second}).Dial
	}

	return &Fetcher{
		UserAgent: userAgent,
		Client: &http.Client{
			Transport: &http.Transport{
				Dial: dial,
			},
		},
	}
}

// Fetch performs a bounded GET against rawURL per spec.md §4.1.
func (f *Fetcher) Fetch(rawURL string, opts FetchOptions) (*Result, error) {
	if opts.MaxBytes == 0 {
		opts.MaxBytes = DefaultFetchOptions().MaxBytes
	}
	if opts.MaxSeconds == 0 {
		opts.MaxSeconds = DefaultFetchOptions().MaxSeconds
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("safefetch: invalid url %q: %w", rawURL, err)
	}

	if opts.ValidateRobots && f.Robots != nil {
		origin := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
		if !f.Robots.Allowed(origin, parsed.RequestURI()) {
			return nil, ErrRobotBlocked
		}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), opts.MaxSeconds)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("safefetch: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	client := *f.Client
	if opts.FollowRedirects {
		client.CheckRedirect = nil
	} else {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > opts.MaxBytes {
			return &Result{
				StatusCode: resp.StatusCode,
				Header:     resp.Header,
				FinalURL:   resp.Request.URL.String(),
			}, nil
		}
	}

	body, err := readBounded(resp.Body, opts.MaxBytes, start, opts.MaxSeconds)
	if err != nil {
		return nil, err
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// readBounded streams r, failing with ErrExcessivelyLargeRequest if the
// cumulative byte count exceeds maxBytes, or ErrExcessivelySlowRequest if
// wall-clock since start exceeds maxSeconds before the stream is
// exhausted.
func readBounded(r io.Reader, maxBytes int64, start time.Time, maxSeconds time.Duration) ([]byte, error) {
	const chunkSize = 32 * 1024
	buf := make([]byte, 0, chunkSize)
	chunk := make([]byte, chunkSize)

	for {
		if time.Since(start) > maxSeconds {
			return nil, ErrExcessivelySlowRequest
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if int64(len(buf)) > maxBytes {
				return nil, ErrExcessivelyLargeRequest
			}
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			// The request context shares the maxSeconds deadline, so a read
			// cut off by it is a slow response, not a transport failure.
			if time.Since(start) >= maxSeconds {
				return nil, ErrExcessivelySlowRequest
			}
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
	}
}

// FetchJSON is Fetch followed by a JSON decode into v. An empty body fails
// with ErrNoContent (spec.md §4.1).
func (f *Fetcher) FetchJSON(rawURL string, opts FetchOptions, v any) (*Result, error) {
	result, err := f.Fetch(rawURL, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Body) == 0 {
		return result, ErrNoContent
	}
	if err := json.Unmarshal(result.Body, v); err != nil {
		return result, fmt.Errorf("safefetch: decoding json from %v: %w", rawURL, err)
	}
	return result, nil
}

// IsUnreachableStatus reports whether code is one of the status codes
// spec.md §4.1 says classify a host as unreachable for our purposes: the
// caller (typically the ingest orchestrator) makes the final call.
func IsUnreachableStatus(code int) bool {
	if code == 404 {
		return true
	}
	return code >= 500 && code <= 520
}
