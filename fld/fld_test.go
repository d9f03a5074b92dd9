package fld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTwoLabelsUnchanged(t *testing.T) {
	assert.Equal(t, "example.com", Resolve("example.com"))
}

func TestResolveSubdomain(t *testing.T) {
	assert.Equal(t, "example.com", Resolve("mastodon.example.com"))
	assert.Equal(t, "example.com", Resolve("deep.sub.mastodon.example.com"))
}

func TestResolveKnownMultiPartSuffix(t *testing.T) {
	assert.Equal(t, "example.co.uk", Resolve("www.example.co.uk"))
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "example.com", Resolve("WWW.Example.COM"))
}

func TestResolveTrimsTrailingDot(t *testing.T) {
	assert.Equal(t, "example.com", Resolve("mastodon.example.com."))
}
