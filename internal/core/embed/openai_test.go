package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedEmptyInputs(t *testing.T) {
	c := NewClient("key", "text-embedding-3-small")

	vecs, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedMissingKey(t *testing.T) {
	c := NewClient("", "text-embedding-3-small")

	_, err := c.Embed(context.Background(), []string{"some text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing openai key")
}
