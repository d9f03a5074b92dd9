package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesInvariants(t *testing.T) {
	s := Default()
	assert.NoError(t, s.assertInvariants())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().SpamDomainThreshold, s.SpamDomainThreshold)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fedimapper.yaml")
	contents := "spam_domain_threshold: 42\nevil_domains:\n  - evil.example\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, s.SpamDomainThreshold)
	assert.Equal(t, []string{"evil.example"}, s.EvilDomains)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fedimapper.yaml")
	contents := "fetcher:\n  https_probe_timeout: not-a-duration\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FEDIMAPPER_SPAM_DOMAIN_THRESHOLD", "7")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, s.SpamDomainThreshold)
}
