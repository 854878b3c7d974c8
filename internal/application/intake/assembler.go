// Package intake composes the extraction pipeline: product lines are pulled
// from raw email text, validated against the catalog, and assembled into a
// confidence-scored order.
package intake

import (
	"time"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/extraction/delivery"
	"github.com/orderflow/intake/internal/extraction/notes"
	"github.com/orderflow/intake/internal/extraction/productline"
)

// DefaultKeepConfidence is the floor below which extracted lines are dropped
// before validation. Unmatched lines carry 0.5 and therefore never survive
// under the default; only catalog-matched lines do.
const DefaultKeepConfidence = 0.7

// Email is the ingestion boundary's view of one inbound message. Sender and
// ReceivedAt are optional; the assembler substitutes sentinels for both.
type Email struct {
	RawContent string
	Sender     string
	Subject    string
	ReceivedAt *time.Time
}

// Assembler turns one email into one Order. It never fails: extraction gaps
// become absent fields or invalid items, and an email yielding nothing still
// produces a valid empty order with confidence 0.0.
type Assembler struct {
	lines          *productline.Extractor
	delivery       *delivery.Extractor
	notes          *notes.Extractor
	validator      *Validator
	keepConfidence float64
	now            func() time.Time
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithNow injects the clock stamped onto assembled orders.
func WithNow(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler wires the extraction stages together. A keepConfidence of 0
// or less falls back to DefaultKeepConfidence.
func NewAssembler(
	lines *productline.Extractor,
	deliveryExtractor *delivery.Extractor,
	notesExtractor *notes.Extractor,
	validator *Validator,
	keepConfidence float64,
	opts ...Option,
) *Assembler {
	if keepConfidence <= 0 {
		keepConfidence = DefaultKeepConfidence
	}
	a := &Assembler{
		lines:          lines,
		delivery:       deliveryExtractor,
		notes:          notesExtractor,
		validator:      validator,
		keepConfidence: keepConfidence,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble extracts, validates, and aggregates email into an Order. The
// result is deterministic for identical inputs and catalog state, except
// where relative dates resolve against the delivery extractor's clock.
func (a *Assembler) Assemble(email Email) *order.Order {
	var items []order.OrderItem
	for _, line := range a.lines.Extract(email.RawContent) {
		if line.Confidence < a.keepConfidence {
			continue
		}

		result := a.validator.Validate(line.Product, line.Quantity, line.Phrase)

		item := order.OrderItem{
			SKU:             line.Phrase,
			Quantity:        line.Quantity,
			ConfidenceScore: line.Confidence,
		}
		if line.Product != nil {
			item.SKU = line.Product.Code
			item.Price = line.Product.Price
		}
		if !result.Valid {
			item.ValidationIssues = result.Issues
			item.SuggestedReplacements = result.Suggestions
		}
		items = append(items, item)
	}

	return &order.Order{
		ID:               order.NewID(email.ReceivedAt),
		CustomerEmail:    customerOf(email),
		Items:            items,
		ConfidenceScore:  order.MeanConfidence(items),
		ValidationIssues: order.CollectIssues(items),
		Delivery:         a.delivery.Extract(email.RawContent),
		Notes:            a.notes.Extract(email.RawContent),
		Status:           order.StatusPending,
		CreatedAt:        a.now().UTC(),
	}
}

func customerOf(email Email) string {
	if email.Sender == "" {
		return order.UnknownCustomer
	}
	return email.Sender
}
