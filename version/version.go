// Package version parses the free-form version strings fediverse servers
// advertise into structured {software, software_version, mastodon_version}
// triples (C6 in spec.md §4.6), and normalizes ASN owner strings into short
// company identifiers. Grounded on the original's version-parsing regex
// cascades (fedimapper/services/mastodon.py, db/versions), reworked as
// Go's regexp rather than Python's re, since that's the library every
// example repo in this pack reaches for when it needs pattern matching.
package version

import (
	"regexp"
	"strings"
)

// Parsed is the decomposition of an advertised version string.
type Parsed struct {
	Software        *string
	SoftwareVersion *string
	MastodonVersion *string
}

var (
	owncastRe = regexp.MustCompile(`(?i)^Owncast v(\S+)`)
	genericRe = regexp.MustCompile(`^(\d+\.\d+\.\d+\S*)`)
	compatRe  = regexp.MustCompile(`^(\d+\.\d+\.\d+\S*) \(compatible; (\w+) (\d+\.\d+\.*\d*\S*)\)`)
)

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Parse implements the cascade described in spec.md §4.6.
func Parse(raw string) Parsed {
	switch {
	case strings.HasPrefix(raw, "takahe/"):
		return Parsed{
			Software:        ptr("takahe"),
			SoftwareVersion: ptr(strings.TrimPrefix(raw, "takahe/")),
		}

	case owncastRe.MatchString(raw):
		m := owncastRe.FindStringSubmatch(raw)
		return Parsed{
			Software:        ptr("owncast"),
			SoftwareVersion: ptr(m[1]),
		}

	case strings.Contains(raw, "glitch"):
		p := genericParse(raw)
		p.Software = ptr("glitch")
		return p

	case strings.Contains(raw, "hometown"):
		p := genericParse(raw)
		p.Software = ptr("hometown")
		if p.SoftwareVersion != nil {
			parts := strings.SplitN(*p.SoftwareVersion, "-", 2)
			if len(parts) == 2 {
				p.SoftwareVersion = ptr(parts[1])
			}
		}
		if p.MastodonVersion != nil {
			if idx := strings.Index(*p.MastodonVersion, "+"); idx >= 0 {
				p.MastodonVersion = ptr((*p.MastodonVersion)[:idx])
			}
		}
		return p

	default:
		return genericParse(raw)
	}
}

// genericParse is the fallback mastodon-style parse: capture a leading
// semver-ish token as mastodon_version, then check whether it's wrapped in
// a "(compatible; Name x.y.z)" annotation naming a different underlying
// implementation.
func genericParse(raw string) Parsed {
	if !genericRe.MatchString(raw) {
		return Parsed{}
	}

	mastodonVersion := genericRe.FindStringSubmatch(raw)[1]

	if m := compatRe.FindStringSubmatch(raw); m != nil {
		return Parsed{
			MastodonVersion: ptr(m[1]),
			Software:        ptr(strings.ToLower(m[2])),
			SoftwareVersion: ptr(m[3]),
		}
	}

	return Parsed{
		MastodonVersion: ptr(mastodonVersion),
		Software:        ptr("mastodon"),
		SoftwareVersion: ptr(mastodonVersion),
	}
}

// SanityCaps are the inclusive upper bounds spec.md §4.5 and §8 apply to
// nodeinfo usage counters; a value of exactly the cap is accepted, one
// above it is dropped to null.
const (
	MaxUserCount   = 1250000
	MaxPostCount   = 1000000000
	MaxActiveUsers = 1250000
)

// SanityCheck returns nil when v exceeds cap, or a pointer to v otherwise.
func SanityCheck(v, cap int) *int {
	if v > cap {
		return nil
	}
	return &v
}
