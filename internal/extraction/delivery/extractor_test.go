package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newTestExtractor() *Extractor {
	return NewExtractor(WithNow(fixedNow))
}

func TestExtractAddress(t *testing.T) {
	e := newTestExtractor()

	t.Run("inline after colon", func(t *testing.T) {
		d := e.Extract("Hi,\nShip to: 123 Main Street, Springfield\nThanks")
		assert.Equal(t, "123 Main Street, Springfield", d.Address)
	})

	t.Run("address on next line", func(t *testing.T) {
		d := e.Extract("Delivery address:\n45 Oak Avenue, Portland\nRegards")
		assert.Equal(t, "45 Oak Avenue, Portland", d.Address)
	})

	t.Run("recipient name plus street line are concatenated", func(t *testing.T) {
		d := e.Extract("Please deliver to:\nJane Cooper\n88 Elm Road, Denver\nThanks")
		assert.Equal(t, "Jane Cooper, 88 Elm Road, Denver", d.Address)
	})

	t.Run("keyword precedence follows list order", func(t *testing.T) {
		d := e.Extract("Ship to: 1 First St\nDeliver to: 2 Second St")
		assert.Equal(t, "1 First St", d.Address)
	})

	t.Run("fallback picks address-looking line", func(t *testing.T) {
		d := e.Extract("Hello\n10 Downing Street, London\nBest")
		assert.Equal(t, "10 Downing Street, London", d.Address)
	})

	t.Run("fallback treats a comma as address-like", func(t *testing.T) {
		d := e.Extract("Hello\nSpringfield, IL\nBest")
		assert.Equal(t, "Springfield, IL", d.Address)
	})

	t.Run("fallback skips product lines", func(t *testing.T) {
		d := e.Extract("SuperWidget x 5, urgent\n77 Pine Blvd\nBest")
		assert.Equal(t, "77 Pine Blvd", d.Address)
	})

	t.Run("no address yields empty", func(t *testing.T) {
		d := e.Extract("Hello\nplease quote me for widgets\nthanks")
		assert.Empty(t, d.Address)
	})

	t.Run("case insensitive keyword", func(t *testing.T) {
		d := e.Extract("SHIP TO: 9 Birch Lane")
		assert.Equal(t, "9 Birch Lane", d.Address)
	})
}

func TestExtractDate(t *testing.T) {
	e := newTestExtractor()

	t.Run("explicit iso date after keyword", func(t *testing.T) {
		d := e.Extract("Requested delivery date: 2024-06-15")
		assert.Equal(t, "2024-06-15", d.Date)
	})

	t.Run("explicit date keeps stated year", func(t *testing.T) {
		d := e.Extract("Delivery date: 2023-01-02")
		assert.Equal(t, "2023-01-02", d.Date)
	})

	t.Run("yearless date is future biased", func(t *testing.T) {
		// January 10 already passed relative to the 2024-03-15 clock.
		d := e.Extract("Needed on: January 10")
		assert.Equal(t, "2025-01-10", d.Date)
	})

	t.Run("upcoming yearless date stays in current year", func(t *testing.T) {
		d := e.Extract("Needed on: June 10")
		assert.Equal(t, "2024-06-10", d.Date)
	})

	t.Run("natural language inside keyword line", func(t *testing.T) {
		// Clock is Friday 2024-03-15.
		d := e.Extract("Please deliver before tomorrow, thanks")
		assert.Equal(t, "2024-03-16", d.Date)
	})

	t.Run("full text fallback without keyword anchor", func(t *testing.T) {
		d := e.Extract("We restock next monday so plan accordingly")
		assert.Equal(t, "2024-03-18", d.Date)
	})

	t.Run("no date yields empty", func(t *testing.T) {
		d := e.Extract("Hello, send the usual widgets")
		assert.Empty(t, d.Date)
	})
}

func TestExtractCombined(t *testing.T) {
	e := newTestExtractor()

	d := e.Extract("Need 5 SuperWidget\nShip to: 123 Main Street, Springfield\nDeadline: 2024-06-15\nThanks")
	assert.Equal(t, "123 Main Street, Springfield", d.Address)
	assert.Equal(t, "2024-06-15", d.Date)
	assert.Empty(t, d.Instructions)
}

func TestKeywordListsAreOrdered(t *testing.T) {
	// The precedence encoded by these lists is load-bearing; pin the heads
	// so a reorder is a deliberate act.
	assert.Equal(t, "ship to", AddressKeywords[0])
	assert.Equal(t, "before", DateKeywords[0])
	assert.Len(t, AddressKeywords, 8)
	assert.Len(t, DateKeywords, 12)
}
