package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identityDomain(h string) string { return h }

func TestDampenSpamKeyedDropsThresholdDomain(t *testing.T) {
	ectx := &Context{BaseDomainOf: identityDomain, SpamDomainThreshold: 3}

	hosts := []string{"spammer.example", "spammer.example", "spammer.example", "legit.example"}
	kept, spam := dampenSpamKeyed(ectx, hosts, func(h string) string { return h })

	assert.Equal(t, []string{"legit.example"}, kept)
	_, ok := spam["spammer.example"]
	assert.True(t, ok)
}

func TestDampenSpamKeyedDefaultThreshold(t *testing.T) {
	ectx := &Context{BaseDomainOf: identityDomain}
	hosts := make([]string, 0, 100)
	for i := 0; i < 99; i++ {
		hosts = append(hosts, "spammer.example")
	}
	kept, spam := dampenSpamKeyed(ectx, hosts, func(h string) string { return h })
	assert.Len(t, kept, 99)
	assert.Empty(t, spam)
}

func TestDampenSpamKeyedNoSpamKeepsAll(t *testing.T) {
	ectx := &Context{BaseDomainOf: identityDomain, SpamDomainThreshold: 100}
	hosts := []string{"a.example", "b.example", "c.example"}
	kept, spam := dampenSpamKeyed(ectx, hosts, func(h string) string { return h })
	assert.Equal(t, hosts, kept)
	assert.Empty(t, spam)
}

func TestDampenSpamKeyedMatchesSpecScenario(t *testing.T) {
	ectx := &Context{BaseDomainOf: identityDomain}

	hosts := make([]string, 0, 400)
	for i := 0; i < 150; i++ {
		hosts = append(hosts, "spammer.example")
	}
	for i := 0; i < 250; i++ {
		hosts = append(hosts, "legit.example")
	}

	kept, spam := dampenSpamKeyed(ectx, hosts, func(h string) string { return h })
	for _, h := range kept {
		assert.NotEqual(t, "spammer.example", h)
	}
	_, ok := spam["spammer.example"]
	assert.True(t, ok)
}

func TestIsIPLiteralRejectsIPs(t *testing.T) {
	assert.True(t, isIPLiteral("192.0.2.1"))
	assert.True(t, isIPLiteral("[::1]"))
	assert.False(t, isIPLiteral("mastodon.social"))
}

func TestByNameDispatchTableHasAllFourProtocols(t *testing.T) {
	for _, name := range []string{"diaspora", "mastodon", "nodeinfo", "peertube"} {
		_, ok := ByName[name]
		assert.True(t, ok, "missing dispatch entry for %q", name)
	}
}
