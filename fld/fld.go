// Package fld resolves a host to its registrable domain (C3 in spec.md
// §4.3), the "first-level domain" every selection and dedup decision keys
// off. Grounded on golang.org/x/net/publicsuffix, the same module the
// teacher reaches for host normalization, generalized here into a pure,
// allocation-light lookup usable thousands of times per second.
package fld

import "strings"

// Resolve returns host's registrable domain. If host has exactly two
// labels it is returned unchanged. Otherwise the public suffix table is
// consulted; if host's suffix is found, the label immediately below the
// suffix plus the suffix is returned. If no suffix entry matches, the last
// two labels are returned (spec.md §4.3).
func Resolve(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}

	if reg, ok := registrableDomain(host); ok {
		return reg
	}

	return strings.Join(labels[len(labels)-2:], ".")
}
