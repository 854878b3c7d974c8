// Package order defines the immutable value objects produced by the intake
// pipeline: Order, OrderItem, and DeliveryDetails, plus the repository
// contract used by collaborators that persist them.
package order

import "time"

// Status is the lifecycle state of an extracted order.  The core pipeline
// always emits StatusPending; approval is an external mutation recorded by a
// collaborator, never by the pipeline itself.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// Sentinels used when the ingestion boundary supplies no sender or timestamp.
const (
	TempID          = "ORD-TEMP"
	UnknownCustomer = "unknown@email.com"
)

// idTimestampLayout formats a receipt timestamp into an order identifier.
const idTimestampLayout = "20060102150405"

// NewID derives an order identifier from the email receipt timestamp, or the
// TempID sentinel when no timestamp was supplied.  The identifier uses the
// receipt time, not "now", so re-processing the same email is stable.
func NewID(receivedAt *time.Time) string {
	if receivedAt == nil || receivedAt.IsZero() {
		return TempID
	}
	return "ORD-" + receivedAt.Format(idTimestampLayout)
}

// OrderItem is a single extracted product line.  SKU carries the catalog code
// when the line was matched, otherwise the raw extracted phrase verbatim.
// Items are created once by the assembler and never mutated.
type OrderItem struct {
	SKU                   string   `json:"sku"`
	Quantity              int      `json:"quantity"`
	ConfidenceScore       float64  `json:"confidence_score"`
	Price                 float64  `json:"price"`
	ValidationIssues      []string `json:"validation_issues,omitempty"`
	SuggestedReplacements []string `json:"suggested_replacements,omitempty"`
}

// DeliveryDetails carries extracted shipping information.  Empty strings mean
// "absent": a missing address or date is a legitimate extraction outcome, not
// an error.
type DeliveryDetails struct {
	Address string `json:"address,omitempty"`
	// Date is the required delivery date normalized to YYYY-MM-DD.
	Date         string `json:"date,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Order is the machine-usable result of processing one email.  An Order and
// its items are constructed atomically by the assembler and are immutable
// value objects thereafter.
type Order struct {
	ID            string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`

	Items []OrderItem `json:"items"`

	// ConfidenceScore is always the arithmetic mean of the item confidences,
	// or exactly 0.0 when no items survived filtering.  It is never computed
	// independently of the items.
	ConfidenceScore float64 `json:"total_confidence_score"`

	// ValidationIssues concatenates every item's issues in item order.
	ValidationIssues []string `json:"validation_issues,omitempty"`

	Delivery DeliveryDetails `json:"delivery_details"`
	Notes    string          `json:"notes,omitempty"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MeanConfidence computes the aggregate confidence of a set of items: the
// arithmetic mean of their scores, or 0.0 for an empty set.
func MeanConfidence(items []OrderItem) float64 {
	if len(items) == 0 {
		return 0.0
	}
	total := 0.0
	for _, it := range items {
		total += it.ConfidenceScore
	}
	return total / float64(len(items))
}

// CollectIssues flattens the items' validation issues in item order.
func CollectIssues(items []OrderItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ValidationIssues...)
	}
	return out
}
