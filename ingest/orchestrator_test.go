package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEvilMatchesExactAndSubdomain(t *testing.T) {
	o := &Orchestrator{evilSuffixes: []string{"gab.best"}}
	assert.True(t, o.isEvil("gab.best"))
	assert.True(t, o.isEvil("mastodon.gab.best"))
	assert.False(t, o.isEvil("notgab.best"))
	assert.False(t, o.isEvil("example.com"))
}

func TestAddEvilIsIdempotent(t *testing.T) {
	o := &Orchestrator{}
	o.addEvil("spammer.example")
	o.addEvil("spammer.example")
	assert.Len(t, o.evilSuffixes, 1)
	assert.True(t, o.isEvil("spammer.example"))
}

func TestCleanCompanyEmptyOwner(t *testing.T) {
	assert.Equal(t, "", cleanCompany(""))
}

func TestCleanCompanyKnownPrefix(t *testing.T) {
	assert.Equal(t, "LEASEWEB", cleanCompany("LEASEWEB-NETWORK-EU, NL"))
}
