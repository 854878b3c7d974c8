// Package productline scans email text line by line, pulling a quantity and
// a candidate product phrase from each line and resolving the phrase against
// the catalog.
package productline

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/orderflow/intake/internal/domain/catalog"
	"github.com/orderflow/intake/internal/extraction/similarity"
)

// DefaultCandidateCutoff is the similarity floor for grouping a line's
// phrase with a catalog name. It is deliberately coarser than the catalog's
// own 0.8 resolution threshold so weak textual candidates still surface as
// low-confidence items instead of vanishing.
const DefaultCandidateCutoff = 0.6

// Confidence levels assigned per line.
const (
	ConfidenceMatched   = 1.0
	ConfidenceUnmatched = 0.5
)

// NonProductPhrases marks boilerplate that slipped through quantity
// detection: delivery instructions, courtesy phrases, and geographic noise.
// The filter runs after matching so it can discard matched candidates too.
var NonProductPhrases = []string{
	"deliver to",
	"let me know",
	"pricing",
	"availability",
	"before",
	"address",
	"do deliver",
	"meguro",
	"japan",
}

var (
	digitRunRe = regexp.MustCompile(`\d+`)

	// codeTokenRe captures tokens shaped like catalog codes ("ABC-123") so a
	// code mention is recognized before its digits are mistaken for a
	// quantity.
	codeTokenRe = regexp.MustCompile(`[A-Za-z]+[A-Za-z0-9]*-\d+`)
)

// phraseTrimCutset removes the separators that typically surround a product
// name once its digits are gone ("5 x SuperWidget", "SuperWidget - 5 pcs").
const phraseTrimCutset = " -:x*.,"

// Line is one extracted product mention. Product is nil when the phrase did
// not resolve against the catalog; Phrase then carries the raw candidate
// verbatim, otherwise the resolved catalog name.
type Line struct {
	Product    *catalog.Product
	Quantity   int
	Confidence float64
	Phrase     string
}

// Extractor resolves product mentions against a read-only catalog index.
// Safe for concurrent use.
type Extractor struct {
	index  *catalog.Index
	scorer similarity.Scorer
	cutoff float64
}

// NewExtractor builds an Extractor over index. A nil scorer falls back to
// the sequence scorer; a cutoff of 0 or less falls back to
// DefaultCandidateCutoff.
func NewExtractor(index *catalog.Index, scorer similarity.Scorer, cutoff float64) *Extractor {
	if scorer == nil {
		scorer = similarity.NewSequenceScorer()
	}
	if cutoff <= 0 {
		cutoff = DefaultCandidateCutoff
	}
	return &Extractor{index: index, scorer: scorer, cutoff: cutoff}
}

// Extract walks text line by line and returns every product mention found,
// in input order. Lines without a digit run are skipped outright; the first
// digit run on a line is its quantity.
func (e *Extractor) Extract(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		line := norm.NFKC.String(raw)

		// An exact code mention wins outright; its digits must not be read
		// as a quantity.
		if extracted, handled := e.resolveCode(line); handled {
			if extracted != nil {
				out = append(out, *extracted)
			}
			continue
		}

		qtyStr := digitRunRe.FindString(line)
		if qtyStr == "" {
			continue
		}
		quantity, err := strconv.Atoi(qtyStr)
		if err != nil {
			continue
		}

		candidate := strings.Trim(digitRunRe.ReplaceAllString(line, ""), phraseTrimCutset)

		extracted := e.resolve(candidate)
		if isNoise(extracted.Phrase) {
			continue
		}
		extracted.Quantity = quantity
		out = append(out, extracted)
	}
	return out
}

// resolveCode looks for an exact catalog code on the line. A hit owns the
// line: the quantity is the first digit run outside the code itself, and a
// line mentioning only the code carries no quantity signal and is dropped.
// The second return value reports whether the line was owned.
func (e *Extractor) resolveCode(line string) (*Line, bool) {
	for _, token := range codeTokenRe.FindAllString(line, -1) {
		product, ok := e.index.FindByCode(token)
		if !ok {
			continue
		}
		if isNoise(product.Name) {
			return nil, true
		}
		rest := strings.Replace(line, token, "", 1)
		quantity, err := strconv.Atoi(digitRunRe.FindString(rest))
		if err != nil {
			return nil, true
		}
		return &Line{
			Product:    &product,
			Quantity:   quantity,
			Confidence: ConfidenceMatched,
			Phrase:     product.Name,
		}, true
	}
	return nil, false
}

// resolve fuzzy-groups the candidate with catalog names at the coarse
// cutoff, then hands a hit to the index for authoritative resolution.
func (e *Extractor) resolve(candidate string) Line {
	match, ok := similarity.BestMatch(e.scorer, candidate, e.index.Names(), e.cutoff)
	if !ok {
		return Line{Confidence: ConfidenceUnmatched, Phrase: candidate}
	}
	product, found := e.index.FindProduct(match.Candidate)
	if !found {
		// A name from the index always resolves; treat anything else as
		// unmatched rather than failing.
		return Line{Confidence: ConfidenceUnmatched, Phrase: candidate}
	}
	return Line{Product: &product, Confidence: ConfidenceMatched, Phrase: match.Candidate}
}

func isNoise(phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, p := range NonProductPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
