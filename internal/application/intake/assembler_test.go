package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/extraction/delivery"
	"github.com/orderflow/intake/internal/extraction/notes"
	"github.com/orderflow/intake/internal/extraction/productline"
)

func frozenNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	index := testCatalog(t)
	return NewAssembler(
		productline.NewExtractor(index, nil, 0),
		delivery.NewExtractor(delivery.WithNow(frozenNow)),
		notes.NewExtractor(),
		NewValidator(index, DefaultSuggestionCount, 0),
		0,
		WithNow(frozenNow),
	)
}

func TestAssembleExactCodeOrder(t *testing.T) {
	a := newTestAssembler(t)

	o := a.Assemble(Email{RawContent: "Please order ABC-123, 5 pieces"})
	require.Len(t, o.Items, 1)

	item := o.Items[0]
	assert.Equal(t, "ABC-123", item.SKU)
	assert.Equal(t, 5, item.Quantity)
	assert.InDelta(t, 1.0, item.ConfidenceScore, 1e-9)
	assert.Empty(t, item.ValidationIssues)
	assert.Empty(t, o.ValidationIssues)
	assert.InDelta(t, 9.99, item.Price, 1e-9)
}

func TestAssembleBelowMOQOrder(t *testing.T) {
	a := newTestAssembler(t)

	o := a.Assemble(Email{RawContent: "Need 10 pcs of MegaBracket"})
	require.Len(t, o.Items, 1)

	item := o.Items[0]
	assert.Equal(t, "DEF-456", item.SKU)
	assert.Equal(t, 10, item.Quantity)
	assert.InDelta(t, 1.0, item.ConfidenceScore, 1e-9)
	assert.Equal(t, []string{"Quantity 10 is below MOQ of 20 for MegaBracket"}, item.ValidationIssues)
	assert.Equal(t, []string{"Increase quantity to 20"}, item.SuggestedReplacements)
	assert.Equal(t, item.ValidationIssues, o.ValidationIssues)
}

func TestAssembleDeliveryAndNotes(t *testing.T) {
	a := newTestAssembler(t)

	o := a.Assemble(Email{RawContent: "5 x SuperWidget\nShip to: 123 Main Street, Springfield\nDeadline: 2024-06-15\nNotes: call on arrival"})
	assert.Equal(t, "123 Main Street, Springfield", o.Delivery.Address)
	assert.Equal(t, "2024-06-15", o.Delivery.Date)
	assert.Equal(t, "call on arrival", o.Notes)
}

func TestAssembleNoDigitsYieldsEmptyOrder(t *testing.T) {
	a := newTestAssembler(t)

	o := a.Assemble(Email{RawContent: "Hello, do you carry widgets at all?"})
	assert.Empty(t, o.Items)
	assert.Equal(t, 0.0, o.ConfidenceScore)
	assert.Empty(t, o.ValidationIssues)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestAssembleDropsLowConfidenceLines(t *testing.T) {
	a := newTestAssembler(t)

	// An unmatched phrase scores 0.5 and falls below the 0.7 keep floor.
	o := a.Assemble(Email{RawContent: "7 FluxCapacitor units\n5 x SuperWidget"})
	require.Len(t, o.Items, 1)
	assert.Equal(t, "ABC-123", o.Items[0].SKU)
}

func TestAssembleConfidenceIsMeanOfItems(t *testing.T) {
	a := newTestAssembler(t)

	o := a.Assemble(Email{RawContent: "5 x SuperWidget\n30 x MegaBracket"})
	require.Len(t, o.Items, 2)
	assert.InDelta(t, 1.0, o.ConfidenceScore, 1e-9)
}

func TestAssembleIdentifierAndCustomer(t *testing.T) {
	a := newTestAssembler(t)

	t.Run("identifier from receipt timestamp", func(t *testing.T) {
		ts := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
		o := a.Assemble(Email{RawContent: "5 x SuperWidget", Sender: "buyer@example.com", ReceivedAt: &ts})
		assert.Equal(t, "ORD-20240315093045", o.ID)
		assert.Equal(t, "buyer@example.com", o.CustomerEmail)
	})

	t.Run("sentinels when sender and timestamp are absent", func(t *testing.T) {
		o := a.Assemble(Email{RawContent: "5 x SuperWidget"})
		assert.Equal(t, order.TempID, o.ID)
		assert.Equal(t, order.UnknownCustomer, o.CustomerEmail)
	})
}

func TestAssembleIsIdempotent(t *testing.T) {
	a := newTestAssembler(t)

	ts := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	email := Email{
		RawContent: "Need 10 pcs of MegaBracket\nShip to: 123 Main Street, Springfield\nNotes: urgent",
		Sender:     "buyer@example.com",
		ReceivedAt: &ts,
	}

	first := a.Assemble(email)
	second := a.Assemble(email)
	assert.Equal(t, first, second)
}
