package catalog

import (
	"strings"

	"github.com/orderflow/intake/internal/extraction/similarity"
)

// DefaultMatchCutoff is the authoritative similarity threshold for resolving a
// phrase to a catalog product.  It is deliberately stricter than the 0.6
// candidate threshold used by the line extractor; see the intake assembler.
const DefaultMatchCutoff = 0.8

// Index provides name/code lookup over a loaded catalog: case-insensitive
// exact matching first, then fuzzy matching against the union of all names
// and codes.  An Index is immutable after construction and therefore safe to
// share across concurrent extraction pipelines without locking.
type Index struct {
	products []Product
	byName   map[string]int // lowercased name → position in products
	byCode   map[string]int // lowercased code → position in products

	// names holds display names in catalog order; union appends codes after
	// names so that fuzzy ties resolve by first occurrence in catalog order.
	names []string
	union []string

	scorer      similarity.Scorer
	matchCutoff float64
}

// NewIndex builds an Index over products.  scorer may be nil, in which case
// the default sequence scorer is used; matchCutoff ≤ 0 falls back to
// DefaultMatchCutoff.
func NewIndex(products []Product, scorer similarity.Scorer, matchCutoff float64) *Index {
	if scorer == nil {
		scorer = similarity.NewSequenceScorer()
	}
	if matchCutoff <= 0 {
		matchCutoff = DefaultMatchCutoff
	}

	ix := &Index{
		products:    make([]Product, len(products)),
		byName:      make(map[string]int, len(products)),
		byCode:      make(map[string]int, len(products)),
		names:       make([]string, 0, len(products)),
		union:       make([]string, 0, 2*len(products)),
		scorer:      scorer,
		matchCutoff: matchCutoff,
	}
	copy(ix.products, products)

	for i, p := range ix.products {
		if _, dup := ix.byName[strings.ToLower(p.Name)]; !dup {
			ix.byName[strings.ToLower(p.Name)] = i
		}
		if _, dup := ix.byCode[strings.ToLower(p.Code)]; !dup {
			ix.byCode[strings.ToLower(p.Code)] = i
		}
		ix.names = append(ix.names, p.Name)
		ix.union = append(ix.union, p.Name)
	}
	for _, p := range ix.products {
		ix.union = append(ix.union, p.Code)
	}
	return ix
}

// Len returns the number of products in the catalog.
func (ix *Index) Len() int { return len(ix.products) }

// Names returns the product display names in catalog order.  The returned
// slice is a copy; callers may not mutate catalog state through it.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

// FindProduct resolves a candidate phrase to a Product:
//
//  1. case-insensitive exact match on name;
//  2. case-insensitive exact match on code;
//  3. fuzzy match at or above the authoritative cutoff against the union of
//     all names and codes, best match winning and ties breaking by catalog
//     order.
//
// The second return value is false when nothing matches.
func (ix *Index) FindProduct(phrase string) (Product, bool) {
	key := strings.ToLower(strings.TrimSpace(phrase))
	if key == "" {
		return Product{}, false
	}
	if i, ok := ix.byName[key]; ok {
		return ix.products[i], true
	}
	if i, ok := ix.byCode[key]; ok {
		return ix.products[i], true
	}

	m, ok := similarity.BestMatch(ix.scorer, strings.TrimSpace(phrase), ix.union, ix.matchCutoff)
	if !ok {
		return Product{}, false
	}
	return ix.lookupExact(m.Candidate)
}

// FindByCode resolves a case-insensitive exact product code.  Unlike
// FindProduct it never falls through to name or fuzzy matching, so callers
// can test arbitrary tokens with it.
func (ix *Index) FindByCode(code string) (Product, bool) {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return Product{}, false
	}
	if i, ok := ix.byCode[key]; ok {
		return ix.products[i], true
	}
	return Product{}, false
}

// FuzzyCandidates returns up to n catalog names/codes similar to phrase at or
// above cutoff, best-first.  It is independent of FindProduct's authoritative
// threshold and exists for suggestion lists; the result may be empty.
func (ix *Index) FuzzyCandidates(phrase string, n int, cutoff float64) []string {
	return similarity.CloseMatches(ix.scorer, strings.TrimSpace(phrase), ix.union, n, cutoff)
}

// lookupExact maps a known name or code string back to its Product.
func (ix *Index) lookupExact(nameOrCode string) (Product, bool) {
	key := strings.ToLower(nameOrCode)
	if i, ok := ix.byName[key]; ok {
		return ix.products[i], true
	}
	if i, ok := ix.byCode[key]; ok {
		return ix.products[i], true
	}
	return Product{}, false
}
