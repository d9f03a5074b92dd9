package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootHasAllSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"crawl", "ingest-instance", "instance", "instance-version",
		"instance-peers", "instance-blocks", "vacuum-database",
	} {
		assert.True(t, names[want], "expected root command to have subcommand %v", want)
	}
}

func TestCrawlFlagDefaultsToZero(t *testing.T) {
	assert.Equal(t, 0, numProcesses)
}

func TestFormatHelpersHandleNil(t *testing.T) {
	assert.Equal(t, nullDisplay, formatString(nil))
	assert.Equal(t, nullDisplay, formatInt(nil))
	assert.Equal(t, nullDisplay, formatBool(nil))
	assert.Equal(t, nullDisplay, formatTime(nil))
	assert.Equal(t, nullDisplay, formatStatus(nil))
}
