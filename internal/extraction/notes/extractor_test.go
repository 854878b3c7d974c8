package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	e := NewExtractor()

	t.Run("notes anchor", func(t *testing.T) {
		got := e.Extract("Order below.\nNotes: please use the rear entrance\nThanks")
		assert.Equal(t, "please use the rear entrance", got)
	})

	t.Run("singular note anchor", func(t *testing.T) {
		got := e.Extract("Note - fragile items inside")
		assert.Equal(t, "fragile items inside", got)
	})

	t.Run("let me know anchor", func(t *testing.T) {
		got := e.Extract("Let me know if Thursday works better")
		assert.Equal(t, "if Thursday works better", got)
	})

	t.Run("alternatives anchor", func(t *testing.T) {
		got := e.Extract("If there are better alternatives for any item, feel free to swap them")
		assert.Equal(t, "feel free to swap them", got)
	})

	t.Run("sign off anchor", func(t *testing.T) {
		got := e.Extract("see attached\nSincerely, Pat Smith")
		assert.Equal(t, "Pat Smith", got)
	})

	t.Run("pattern order wins over text position", func(t *testing.T) {
		// "let me know" appears first in the text, but the notes anchor is
		// checked first.
		got := e.Extract("Let me know asap.\nNotes: call on arrival")
		assert.Equal(t, "call on arrival", got)
	})

	t.Run("capture stops at end of line", func(t *testing.T) {
		got := e.Extract("Notes: first remark\nsecond line is not a note")
		assert.Equal(t, "first remark", got)
	})

	t.Run("no note yields empty", func(t *testing.T) {
		assert.Empty(t, e.Extract("Need 5 SuperWidget by Friday"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		got := e.Extract("NOTES: leave at the dock")
		assert.Equal(t, "leave at the dock", got)
	})
}
