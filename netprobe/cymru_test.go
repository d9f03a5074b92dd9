package netprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCymruLine(t *testing.T) {
	line := "15169   | 8.8.8.8          | 8.8.8.0/24          | US | arin     | 1992-12-01 | GOOGLE - Google LLC, US"

	rec, err := parseCymruLine(line)
	assert.NoError(t, err)
	assert.Equal(t, "AS15169", rec.ASN)
	assert.Equal(t, "US", rec.CC)
	assert.Equal(t, "8.8.8.0/24", rec.Prefix)
	assert.Equal(t, "GOOGLE - Google LLC, US", rec.Owner)
}

func TestParseCymruLineTreatsNAAsEmpty(t *testing.T) {
	line := "NA | 203.0.113.1 | NA | NA | NA | NA | NA"

	rec, err := parseCymruLine(line)
	assert.NoError(t, err)
	assert.Equal(t, "", rec.ASN)
	assert.Equal(t, "", rec.CC)
	assert.Equal(t, "", rec.Owner)
	assert.Equal(t, "", rec.Prefix)
}

func TestParseCymruLineRejectsShortLine(t *testing.T) {
	_, err := parseCymruLine("garbage")
	assert.Error(t, err)
}
