package chunker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vecs [][]float32
	err  error
}

func (s stubEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vecs, nil
}

func TestJaccardScorer(t *testing.T) {
	s := jaccardScorer{}
	ctx := context.Background()

	assert.Equal(t, 1.0, s.Score(ctx, "the same words", "the same words"))
	assert.Equal(t, 0.0, s.Score(ctx, "alpha beta", "gamma delta"))
	assert.Equal(t, 0.0, s.Score(ctx, "", "anything"))
	assert.Equal(t, 0.0, s.Score(ctx, "anything", "   "))

	// Case-insensitive: 2 shared of 6 distinct words.
	got := s.Score(ctx, "a b c d", "C D e f")
	assert.InDelta(t, 2.0/6.0, got, 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
}

func TestEmbeddingScorer(t *testing.T) {
	ctx := context.Background()

	s := &embeddingScorer{
		embedder: stubEmbedder{vecs: [][]float32{{1, 0}, {1, 0}}},
		log:      nopLogger{},
	}
	assert.InDelta(t, 1.0, s.Score(ctx, "one", "two"), 1e-6)
}

func TestEmbeddingScorerFallsBackOnError(t *testing.T) {
	ctx := context.Background()

	s := &embeddingScorer{
		embedder: stubEmbedder{err: errors.New("model offline")},
		log:      nopLogger{},
	}
	// Falls back to word overlap and never returns an error.
	got := s.Score(ctx, "the same words", "the same words")
	require.Equal(t, 1.0, got)

	got = s.Score(ctx, "alpha beta", "gamma delta")
	assert.Equal(t, 0.0, got)
}
