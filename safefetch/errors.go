package safefetch

import "errors"

// Sentinel errors returned by Fetch and FetchJSON (spec.md §4.1). Callers
// should use errors.Is against these.
var (
	// ErrRobotBlocked means validate_robots was set and the request's
	// origin disallows the configured user-agent for this path.
	ErrRobotBlocked = errors.New("safefetch: blocked by robots.txt")

	// ErrExcessivelyLargeRequest means the streamed body exceeded max_bytes.
	// An advertised Content-Length above max_bytes does not produce this
	// error: Fetch then returns the status and headers with an empty body.
	ErrExcessivelyLargeRequest = errors.New("safefetch: response exceeded max bytes")

	// ErrExcessivelySlowRequest means wall-clock time since the request
	// began exceeded max_seconds before the body finished streaming.
	ErrExcessivelySlowRequest = errors.New("safefetch: response exceeded max seconds")

	// ErrUnreachable wraps transport-level connect/read failures.
	ErrUnreachable = errors.New("safefetch: host unreachable")

	// ErrNoContent means FetchJSON received an empty body.
	ErrNoContent = errors.New("safefetch: no content to decode")
)
