package version

import (
	"regexp"
	"strings"
)

// companyCascade is the ordered regex cascade from spec.md §6, most
// specific pattern first. The first match wins.
var companyCascade = []*regexp.Regexp{
	regexp.MustCompile(`^(THE-[A-Z\d]*)-(?:A[SP]N?)`),
	regexp.MustCompile(`^([A-Z\d]*)-(?:A[SP]N?)`),
	regexp.MustCompile(`^([A-Z\d]*)-CN-NET`),
	regexp.MustCompile(`^([A-Z-]*)\d*-(?:A[SP]N?)`),
	regexp.MustCompile(`^([A-Z-]*)-\d+[\s|\-,]`),
	regexp.MustCompile(`^ASN?-([A-Z]*), [A-Z]{2}`),
	regexp.MustCompile(`^([A-Z]*), [A-Z]{2}`),
}

var countrySuffixRe = regexp.MustCompile(`, [A-Z]{2}$`)

// CleanASNCompany normalizes an ASN owner string into a short company
// identifier, per the cascade in spec.md §6. It is idempotent:
// CleanASNCompany(CleanASNCompany(x)) == CleanASNCompany(x).
func CleanASNCompany(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return owner
	}

	if strings.Contains(owner, "6NETWORK") {
		return "6NETWORK"
	}

	for _, re := range companyCascade {
		if m := re.FindStringSubmatch(owner); m != nil {
			return m[1]
		}
	}

	// No regex matched: strip the trailing ", CC" country suffix.
	stripped := countrySuffixRe.ReplaceAllString(owner, "")

	words := strings.Fields(stripped)
	if len(words) >= 2 && isAllCaps(words[0]) && looksLikeVariant(words[0], words[1]) {
		return words[0]
	}

	return stripped
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// looksLikeVariant reports whether second is a lowercased URL-ish form of
// first or a case-variant of it, per spec.md §6's final clause.
func looksLikeVariant(first, second string) bool {
	if strings.EqualFold(first, second) {
		return true
	}
	lowered := strings.ToLower(first)
	return strings.Contains(strings.ToLower(second), lowered)
}

// companyPrefixes is the plain prefix-match list from spec.md §4.6, applied
// before falling through to the regex cascade's result is used verbatim
// for these well-known hosters whose raw owner strings vary too much for a
// single regex.
var companyPrefixes = []string{"LEASEWEB", "SAKURA", "CLOUDFLARE", "TWC", "SWITCH Peering"}

// MatchKnownPrefix returns the known-hoster name if owner starts with one
// of the fixed prefixes fedimapper special-cases, and ok=true.
func MatchKnownPrefix(owner string) (string, bool) {
	for _, prefix := range companyPrefixes {
		if strings.HasPrefix(owner, prefix) {
			return prefix, true
		}
	}
	return "", false
}
