package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceScorer(t *testing.T) {
	s := NewSequenceScorer()

	assert.Equal(t, 1.0, s.Score("SuperWidget", "SuperWidget"))
	assert.Equal(t, 1.0, s.Score("", ""))
	assert.Equal(t, 0.0, s.Score("SuperWidget", ""))
	assert.Equal(t, 0.0, s.Score("", "SuperWidget"))

	// A one-character typo stays well above the 0.8 catalog threshold.
	assert.GreaterOrEqual(t, s.Score("SuperWidge", "SuperWidget"), 0.8)

	// Unrelated strings stay below the 0.6 candidate threshold.
	assert.Less(t, s.Score("zzzzqqqq", "SuperWidget"), 0.6)
}

func TestBestMatch(t *testing.T) {
	s := NewSequenceScorer()
	candidates := []string{"SuperWidget", "HyperWidget", "MegaBracket"}

	t.Run("finds best candidate", func(t *testing.T) {
		m, ok := BestMatch(s, "SuperWidgt", candidates, 0.6)
		require.True(t, ok)
		assert.Equal(t, "SuperWidget", m.Candidate)
		assert.GreaterOrEqual(t, m.Score, 0.6)
	})

	t.Run("nothing clears cutoff", func(t *testing.T) {
		_, ok := BestMatch(s, "xxxxxxxx", candidates, 0.6)
		assert.False(t, ok)
	})

	t.Run("ties break by candidate order", func(t *testing.T) {
		m, ok := BestMatch(s, "widget", []string{"widgex", "widgez"}, 0.5)
		require.True(t, ok)
		assert.Equal(t, "widgex", m.Candidate)
	})

	t.Run("empty candidates", func(t *testing.T) {
		_, ok := BestMatch(s, "widget", nil, 0.1)
		assert.False(t, ok)
	})
}

func TestCloseMatches(t *testing.T) {
	s := NewSequenceScorer()
	candidates := []string{"SuperWidget", "SuperWidgets", "MegaBracket", "SuperWidge"}

	t.Run("returns best-first up to n", func(t *testing.T) {
		got := CloseMatches(s, "SuperWidget", candidates, 2, 0.6)
		require.Len(t, got, 2)
		assert.Equal(t, "SuperWidget", got[0])
	})

	t.Run("respects cutoff", func(t *testing.T) {
		got := CloseMatches(s, "SuperWidget", candidates, 10, 0.999)
		assert.Equal(t, []string{"SuperWidget"}, got)
	})

	t.Run("empty when nothing matches", func(t *testing.T) {
		assert.Empty(t, CloseMatches(s, "qqqq", candidates, 2, 0.9))
	})

	t.Run("n zero returns nil", func(t *testing.T) {
		assert.Nil(t, CloseMatches(s, "SuperWidget", candidates, 0, 0.1))
	})
}
