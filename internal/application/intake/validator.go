package intake

import (
	"fmt"

	"github.com/orderflow/intake/internal/domain/catalog"
)

// IssueProductNotFound is the issue recorded for lines whose phrase never
// resolved against the catalog. Matched items must never carry it.
const IssueProductNotFound = "Product not found in catalog"

// Suggestion defaults for unresolved phrases.
const (
	DefaultSuggestionCount  = 2
	DefaultSuggestionCutoff = 0.6
)

// ValidationResult is the outcome of checking one extracted line against the
// catalog. Valid is true exactly when Issues is empty.
type ValidationResult struct {
	Valid       bool
	Issues      []string
	Suggestions []string
}

// Validator checks extracted product lines against catalog constraints:
// existence, minimum order quantity, and available stock. MOQ and stock
// checks are independent and may both fire for the same line.
type Validator struct {
	index            *catalog.Index
	suggestionCount  int
	suggestionCutoff float64
}

// NewValidator builds a Validator over index. A negative suggestionCount
// falls back to the default; zero disables replacement suggestions for
// unresolved phrases. A non-positive cutoff falls back to the default.
func NewValidator(index *catalog.Index, suggestionCount int, suggestionCutoff float64) *Validator {
	if suggestionCount < 0 {
		suggestionCount = DefaultSuggestionCount
	}
	if suggestionCutoff <= 0 {
		suggestionCutoff = DefaultSuggestionCutoff
	}
	return &Validator{
		index:            index,
		suggestionCount:  suggestionCount,
		suggestionCutoff: suggestionCutoff,
	}
}

// Validate checks a line's resolved product and quantity. product is nil for
// unresolved lines; rawPhrase is then used to look up close catalog entries
// as replacement suggestions. An unresolved line never gets MOQ or stock
// issues.
func (v *Validator) Validate(product *catalog.Product, quantity int, rawPhrase string) ValidationResult {
	if product == nil {
		var suggestions []string
		if v.suggestionCount > 0 {
			suggestions = v.index.FuzzyCandidates(rawPhrase, v.suggestionCount, v.suggestionCutoff)
		}
		return ValidationResult{
			Valid:       false,
			Issues:      []string{IssueProductNotFound},
			Suggestions: suggestions,
		}
	}

	var issues, suggestions []string
	if quantity < product.MinOrderQuantity {
		issues = append(issues, fmt.Sprintf(
			"Quantity %d is below MOQ of %d for %s", quantity, product.MinOrderQuantity, product.Name))
		suggestions = append(suggestions, fmt.Sprintf("Increase quantity to %d", product.MinOrderQuantity))
	}
	if quantity > product.Stock {
		issues = append(issues, fmt.Sprintf(
			"Requested quantity %d exceeds available stock of %d for %s", quantity, product.Stock, product.Name))
		suggestions = append(suggestions, fmt.Sprintf("Reduce quantity to %d", product.Stock))
	}

	return ValidationResult{
		Valid:       len(issues) == 0,
		Issues:      issues,
		Suggestions: suggestions,
	}
}
