// Package similarity provides the fuzzy string matching used to resolve free-
// form product mentions against the catalog.  The matching algorithm sits
// behind the Scorer interface so that the 0.6/0.8 thresholds remain the only
// tunable surface of the pipeline and the algorithm itself stays swappable.
package similarity

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Scorer computes a normalized similarity ratio in [0, 1] between two strings.
// 1.0 means identical, 0.0 means nothing in common.
type Scorer interface {
	Score(a, b string) float64
}

// Match pairs a candidate string with its similarity score.
type Match struct {
	Candidate string
	Score     float64
}

// sequenceScorer computes a character-level SequenceMatcher ratio:
// 2*M / (len(a)+len(b)) where M is the total length of matched blocks.
type sequenceScorer struct{}

// NewSequenceScorer returns the default Scorer, a character-level
// edit-block ratio equivalent to difflib.SequenceMatcher.
func NewSequenceScorer() Scorer {
	return sequenceScorer{}
}

func (sequenceScorer) Score(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// BestMatch returns the single highest-scoring candidate at or above cutoff.
// Ties are broken by first occurrence in candidates, so callers that pass the
// catalog in load order get deterministic catalog-order precedence.
// The second return value is false when no candidate clears the cutoff.
func BestMatch(s Scorer, phrase string, candidates []string, cutoff float64) (Match, bool) {
	best := Match{}
	found := false
	for _, c := range candidates {
		score := s.Score(phrase, c)
		if score < cutoff {
			continue
		}
		if !found || score > best.Score {
			best = Match{Candidate: c, Score: score}
			found = true
		}
	}
	return best, found
}

// CloseMatches returns up to n candidates scoring at or above cutoff, ordered
// best-first.  Ties keep the original candidate order.  The result may be
// empty; it is never nil when n > 0 and at least one candidate clears cutoff.
func CloseMatches(s Scorer, phrase string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if score := s.Score(phrase, c); score >= cutoff {
			matches = append(matches, Match{Candidate: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Candidate
	}
	return out
}
