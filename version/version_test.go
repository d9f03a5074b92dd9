package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestParsePleromaCompatible(t *testing.T) {
	p := Parse("4.1.0 (compatible; Pleroma 2.5.0)")
	require.NotNil(t, p.MastodonVersion)
	require.NotNil(t, p.Software)
	require.NotNil(t, p.SoftwareVersion)
	assert.Equal(t, "4.1.0", *p.MastodonVersion)
	assert.Equal(t, "pleroma", *p.Software)
	assert.Equal(t, "2.5.0", *p.SoftwareVersion)
}

func TestParseTakahe(t *testing.T) {
	p := Parse("takahe/0.9.0")
	require.NotNil(t, p.Software)
	require.NotNil(t, p.SoftwareVersion)
	assert.Equal(t, "takahe", *p.Software)
	assert.Equal(t, "0.9.0", *p.SoftwareVersion)
	assert.Nil(t, p.MastodonVersion)
}

func TestParseOwncast(t *testing.T) {
	p := Parse("Owncast v0.0.13-linux-64bit")
	require.NotNil(t, p.Software)
	require.NotNil(t, p.SoftwareVersion)
	assert.Equal(t, "owncast", *p.Software)
	assert.Equal(t, "0.0.13-linux-64bit", *p.SoftwareVersion)
}

func TestParseGenericMastodon(t *testing.T) {
	p := Parse("4.2.1")
	require.NotNil(t, p.Software)
	assert.Equal(t, "mastodon", *p.Software)
	assert.Equal(t, "4.2.1", *p.SoftwareVersion)
	assert.Equal(t, "4.2.1", *p.MastodonVersion)
}

func TestParseGlitch(t *testing.T) {
	p := Parse("3.5.3+glitch")
	require.NotNil(t, p.Software)
	assert.Equal(t, "glitch", *p.Software)
}

func TestParseUnrecognizedReturnsNulls(t *testing.T) {
	p := Parse("not-a-version-at-all")
	assert.Nil(t, p.Software)
	assert.Nil(t, p.SoftwareVersion)
	assert.Nil(t, p.MastodonVersion)
}

func TestCleanASNCompany(t *testing.T) {
	cases := map[string]string{
		"TWC-11426-CAROLINAS, US":             "TWC",
		"THE-1984-AS, IS":                     "THE-1984",
		"ORACLE-BMC-31898, US":                "ORACLE-BMC",
		"AS-CHOOPA, US":                       "CHOOPA",
		"ASN-6NETWORK *** IoT Zrt ***, HU":    "6NETWORK",
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, CleanASNCompany(input))
		})
	}
}

func TestCleanASNCompanyIsIdempotent(t *testing.T) {
	inputs := []string{
		"TWC-11426-CAROLINAS, US",
		"THE-1984-AS, IS",
		"ORACLE-BMC-31898, US",
		"AS-CHOOPA, US",
		"ASN-6NETWORK *** IoT Zrt ***, HU",
		"SIMPLECOMPANY",
	}
	for _, input := range inputs {
		once := CleanASNCompany(input)
		twice := CleanASNCompany(once)
		assert.Equal(t, once, twice, "not idempotent for %q", input)
	}
}

func TestSanityCheckBoundary(t *testing.T) {
	assert.NotNil(t, SanityCheck(1250000, MaxUserCount))
	assert.Nil(t, SanityCheck(1250001, MaxUserCount))
}
