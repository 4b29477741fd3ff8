package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicCounterCount(t *testing.T) {
	c := heuristicCounter{}

	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 0, c.Count("abc"))
	assert.Equal(t, 1, c.Count("abcd"))
	assert.Equal(t, 2, c.Count(strings.Repeat("a", 8)))
	assert.Equal(t, 25, c.Count(strings.Repeat("a", 100)))
}

func TestHeuristicCounterTruncate(t *testing.T) {
	c := heuristicCounter{}

	short := "short text"
	assert.Equal(t, short, c.Truncate(short, 100))

	long := strings.Repeat("a", 100)
	got := c.Truncate(long, 10)
	assert.Len(t, got, 40)
	assert.LessOrEqual(t, c.Count(got), 10)
}

func TestHeuristicCounterTruncateRuneBoundary(t *testing.T) {
	c := heuristicCounter{}

	// Each symbol is 3 bytes; a 4-byte cut would land mid-rune.
	text := strings.Repeat("∞", 10)
	got := c.Truncate(text, 1)
	assert.Equal(t, "∞", got)
}
