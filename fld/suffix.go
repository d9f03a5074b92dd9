package fld

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// registrableDomain consults the public-suffix table. ok is false when the
// table has no entry for host's suffix, signalling the caller to fall back
// to the last-two-labels heuristic.
func registrableDomain(host string) (string, bool) {
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		// publicsuffix.PublicSuffix falls back to treating the final
		// label as a "suffix" when nothing in the table matches; that's
		// not a real suffix hit for our purposes.
		return "", false
	}

	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	return reg, true
}
