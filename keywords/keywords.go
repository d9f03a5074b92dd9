// Package keywords extracts meaningful keywords from free-form ban
// comments, grounded on fedimapper's original services/stopwords.py: tokens
// shorter than 3 characters and language stop-words are both dropped.
package keywords

import (
	"regexp"
	"strings"
)

// Extractor pulls a set of keywords out of arbitrary text. The ban
// extractor uses this to populate Ban.Keywords from moderation comments.
type Extractor interface {
	Extract(language, text string) map[string]struct{}
}

var wordPattern = regexp.MustCompile(`[\w-]+`)

// English is a minimal Extractor backed by a small, hand-maintained
// English stop-word set; it does not attempt multi-language support the
// way the original's languages.json-driven loader does; fedimapper's ban
// comments are overwhelmingly English, and adding a proper corpus file is
// a later exercise.
type English struct{}

var englishStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "for": {}, "with": {}, "by": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {},
	"as": {}, "at": {}, "from": {}, "not": {}, "has": {}, "have": {}, "had": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "their": {}, "they": {},
	"you": {}, "your": {}, "our": {}, "all": {}, "any": {}, "who": {},
}

// Extract tokenizes text on `[\w-]+`, lowercases, drops tokens of length <=
// 2, and drops stop-words. Non-English languages yield the tokenized,
// length-filtered set unmodified (no stop-words are removed).
func (English) Extract(language, text string) map[string]struct{} {
	stopWords := map[string]struct{}{}
	if strings.EqualFold(language, "en") || strings.EqualFold(language, "english") || language == "" {
		stopWords = englishStopWords
	}

	out := map[string]struct{}{}
	for _, word := range wordPattern.FindAllString(text, -1) {
		lowered := strings.ToLower(word)
		if len(lowered) <= 2 {
			continue
		}
		if _, stop := stopWords[lowered]; stop {
			continue
		}
		out[lowered] = struct{}{}
	}
	return out
}
