package chunker

import (
	"context"
	"math"
	"strings"
)

// SimilarityScorer scores semantic relatedness of two text spans as a
// confidence in [0,1]. Scoring never fails; degraded paths fall back
// internally.
type SimilarityScorer interface {
	Score(ctx context.Context, text1, text2 string) float64
}

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// embeddingScorer embeds both texts and computes their cosine similarity.
// Any embedding failure falls back to word overlap for that call.
type embeddingScorer struct {
	embedder Embedder
	log      Logger
}

func (s *embeddingScorer) Score(ctx context.Context, text1, text2 string) float64 {
	vectors, err := s.embedder.Embed(ctx, []string{text1, text2})
	if err != nil || len(vectors) < 2 {
		s.log.Warnf("chunker: embedding similarity failed, using word overlap: %v", err)
		return jaccardScorer{}.Score(ctx, text1, text2)
	}
	return cosineSimilarity(vectors[0], vectors[1])
}

// cosineSimilarity returns 0 when either vector has zero norm.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// jaccardScorer measures overlap of lowercased word sets; the approximate
// variant used when no embedding model is configured.
type jaccardScorer struct{}

func (jaccardScorer) Score(_ context.Context, text1, text2 string) float64 {
	words1 := wordSet(text1)
	words2 := wordSet(text2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0
	}
	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}
