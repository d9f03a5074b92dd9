package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDropsStopWordsAndShortTokens(t *testing.T) {
	e := English{}
	got := e.Extract("en", "This is a ban for spam and abuse of the rules")
	_, hasThis := got["this"]
	_, hasAnd := got["and"]
	_, hasSpam := got["spam"]
	_, hasAbuse := got["abuse"]
	assert.False(t, hasThis)
	assert.False(t, hasAnd)
	assert.True(t, hasSpam)
	assert.True(t, hasAbuse)
}

func TestExtractLowercasesAndDedupes(t *testing.T) {
	e := English{}
	got := e.Extract("en", "SPAM spam Spam")
	assert.Len(t, got, 1)
	_, ok := got["spam"]
	assert.True(t, ok)
}

func TestExtractNonEnglishKeepsAllLongTokens(t *testing.T) {
	e := English{}
	got := e.Extract("de", "und der spam")
	_, hasUnd := got["und"]
	assert.True(t, hasUnd)
}
