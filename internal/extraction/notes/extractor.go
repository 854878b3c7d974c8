// Package notes pulls free-form customer remarks out of email text using an
// ordered list of anchor patterns.
package notes

import (
	"regexp"
	"strings"
)

// notePatterns are evaluated in order; the first pattern that matches
// anywhere in the text wins and its capture becomes the note. The capture
// runs to the end of the anchoring line only.
var notePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)notes?[:\-\s]*(.*)`),
	regexp.MustCompile(`(?i)let me know[:\-\s]*(.*)`),
	regexp.MustCompile(`(?i)if there are better alternatives for any item, (.*)`),
	regexp.MustCompile(`(?i)sincerely,\s*(.*)`),
}

// Extractor finds customer notes. It holds no state and is safe for
// concurrent use.
type Extractor struct{}

// NewExtractor returns a notes Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the first note found in text, trimmed. An empty string
// means no note was present.
func (e *Extractor) Extract(text string) string {
	for _, pat := range notePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
