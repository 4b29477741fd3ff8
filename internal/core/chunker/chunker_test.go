package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcScorer func(a, b string) float64

func (f funcScorer) Score(_ context.Context, a, b string) float64 { return f(a, b) }

// newTestChunker builds a chunker on the deterministic fallback components
// so token arithmetic in assertions is exact.
func newTestChunker(opts Options, scorer SimilarityScorer) *SemanticChunker {
	if scorer == nil {
		scorer = jaccardScorer{}
	}
	return &SemanticChunker{
		opts:      opts.withDefaults(),
		tokens:    heuristicCounter{},
		segmenter: regexSegmenter{},
		scorer:    scorer,
		log:       nopLogger{},
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	c := newTestChunker(Options{}, nil)
	ctx := context.Background()

	assert.Empty(t, c.ChunkText(ctx, "", "doc"))
	assert.Empty(t, c.ChunkText(ctx, "   \n\t ", "doc"))
}

func TestFindTopicShifts(t *testing.T) {
	scores := map[string]float64{
		"s0|s1": 0.9,
		"s1|s2": 0.2,
	}
	c := newTestChunker(Options{SimilarityThreshold: 0.7}, funcScorer(func(a, b string) float64 {
		return scores[a+"|"+b]
	}))

	sents := []Sentence{
		{Text: "s0", Start: 0, End: 2},
		{Text: "s1", Start: 3, End: 5},
		{Text: "s2", Start: 6, End: 8},
	}

	shifts := c.findTopicShifts(context.Background(), sents)
	assert.Equal(t, []int{2}, shifts)

	assert.Empty(t, c.findTopicShifts(context.Background(), sents[:1]))
	assert.Empty(t, c.findTopicShifts(context.Background(), nil))
}

func TestGroupSentences(t *testing.T) {
	sents := make([]Sentence, 5)
	for i := range sents {
		sents[i] = Sentence{Text: fmt.Sprintf("s%d", i), Start: i * 10, End: i*10 + 2}
	}

	units := groupSentences(sents, []int{2, 4})
	require.Len(t, units, 3)
	assert.Len(t, units[0], 2)
	assert.Len(t, units[1], 2)
	assert.Len(t, units[2], 1)

	// Units partition the sentence sequence exactly.
	var flat []Sentence
	for _, u := range units {
		flat = append(flat, u...)
	}
	assert.Equal(t, sents, flat)

	units = groupSentences(sents, nil)
	require.Len(t, units, 1)
	assert.Len(t, units[0], 5)

	assert.Empty(t, groupSentences(nil, nil))
}

// Two similar sentences followed by a dissimilar one form exactly two
// semantic units.
func TestTwoUnitGrouping(t *testing.T) {
	c := newTestChunker(Options{SimilarityThreshold: 0.7}, funcScorer(func(a, b string) float64 {
		if strings.Contains(a, "geometry") && strings.Contains(b, "geometry") {
			return 0.9
		}
		return 0.1
	}))

	sents := []Sentence{
		{Text: "Triangles are studied in geometry.", Start: 0, End: 34},
		{Text: "Circles appear in geometry too.", Start: 35, End: 66},
		{Text: "The stock market closed higher.", Start: 67, End: 98},
	}

	shifts := c.findTopicShifts(context.Background(), sents)
	units := groupSentences(sents, shifts)

	require.Len(t, units, 2)
	assert.Equal(t, []Sentence{sents[0], sents[1]}, units[0])
	assert.Equal(t, []Sentence{sents[2]}, units[1])
}

func TestSplitLargeUnit(t *testing.T) {
	c := newTestChunker(Options{MaxChunkTokens: 512}, nil)

	// Six 400-byte sentences: 100 tokens each, 601 for the joined unit.
	unit := make([]Sentence, 6)
	for i := range unit {
		unit[i] = Sentence{
			Text:  strings.Repeat(string(rune('a'+i)), 400),
			Start: i * 400,
			End:   (i + 1) * 400,
		}
	}

	spans := c.splitLargeUnit(unit)
	require.Len(t, spans, 2)

	// Order preserved: first five sentences pack to 500 tokens, the sixth
	// starts a new sub-chunk.
	assert.Equal(t, 0, spans[0].start)
	assert.Equal(t, unit[4].End, spans[0].end)
	assert.Equal(t, unit[5].Start, spans[1].start)
	assert.Equal(t, unit[5].End, spans[1].end)
}

func TestSplitLargeUnitSingleOversizedSentence(t *testing.T) {
	c := newTestChunker(Options{MaxChunkTokens: 512}, nil)

	// A single 750-token sentence becomes its own over-budget sub-chunk;
	// truncation happens downstream in assembly.
	unit := []Sentence{{Text: strings.Repeat("x", 3000), Start: 0, End: 3000}}
	spans := c.splitLargeUnit(unit)
	require.Len(t, spans, 1)
	assert.Equal(t, span{start: 0, end: 3000}, spans[0])
}

func TestSplitLargeUnitWithinBudget(t *testing.T) {
	c := newTestChunker(Options{MaxChunkTokens: 512}, nil)

	unit := []Sentence{
		{Text: strings.Repeat("a", 100), Start: 0, End: 100},
		{Text: strings.Repeat("b", 100), Start: 100, End: 200},
	}
	spans := c.splitLargeUnit(unit)
	require.Len(t, spans, 1)
	assert.Equal(t, span{start: 0, end: 200}, spans[0])

	assert.Empty(t, c.splitLargeUnit(nil))
}

func TestAssembleWithOverlapExtendsBackward(t *testing.T) {
	c := newTestChunker(Options{OverlapTokens: 150, MaxChunkTokens: 512}, nil)
	fullText := strings.Repeat("x", 2000)

	// The 120-byte gap is 30 tokens; the 120-token deficit extends the
	// start backward by 480 bytes.
	text, start, end := c.assembleWithOverlap(fullText, 1000, 1400, 880)
	assert.Equal(t, 520, start)
	assert.Equal(t, 1400, end)
	assert.Equal(t, fullText[520:1400], text)
}

func TestAssembleWithOverlapClampsAtZero(t *testing.T) {
	c := newTestChunker(Options{OverlapTokens: 150, MaxChunkTokens: 512}, nil)
	fullText := strings.Repeat("x", 1000)

	_, start, _ := c.assembleWithOverlap(fullText, 100, 400, 0)
	assert.Equal(t, 0, start)
}

func TestAssembleWithOverlapSkipsSufficientGap(t *testing.T) {
	c := newTestChunker(Options{OverlapTokens: 150, MaxChunkTokens: 512}, nil)
	fullText := strings.Repeat("x", 3000)

	// An 800-byte gap is 200 tokens, already past the overlap target.
	text, start, end := c.assembleWithOverlap(fullText, 1000, 1500, 200)
	assert.Equal(t, 1000, start)
	assert.Equal(t, 1500, end)
	assert.Equal(t, fullText[1000:1500], text)
}

func TestAssembleWithOverlapTruncates(t *testing.T) {
	c := newTestChunker(Options{OverlapTokens: 150, MaxChunkTokens: 512}, nil)
	fullText := strings.Repeat("x", 4000)

	// 3000 bytes is 750 tokens; truncation keeps 512*4 bytes.
	text, start, end := c.assembleWithOverlap(fullText, 0, 3000, -1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2048, end)
	assert.Len(t, text, 2048)
	assert.LessOrEqual(t, c.tokens.Count(text), 512)
}

func TestChunkTextBoundsAndMonotonicStarts(t *testing.T) {
	opts := Options{
		OverlapTokens:       10,
		MaxChunkTokens:      60,
		MinChunkTokens:      5,
		SimilarityThreshold: 0.7,
	}
	c := newTestChunker(opts, nil)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Sentence number %d talks about the derivative of a function. ", i)
		fmt.Fprintf(&sb, "Another thought on matrix algebra and the determinant follows here. ")
	}
	chunks := c.ChunkText(context.Background(), sb.String(), "m")
	require.NotEmpty(t, chunks)

	prevStart := -1
	for i, ch := range chunks {
		assert.GreaterOrEqual(t, ch.TokenLength, opts.MinChunkTokens)
		assert.LessOrEqual(t, ch.TokenLength, opts.MaxChunkTokens)
		assert.Less(t, ch.StartChar, ch.EndChar)
		assert.GreaterOrEqual(t, ch.StartChar, prevStart)
		assert.Equal(t, fmt.Sprintf("m_chunk_%d", i), ch.ChunkID)
		assert.Equal(t, c.tokens.Count(ch.Text), ch.TokenLength)
		prevStart = ch.StartChar
	}
}

func TestChunkTextSingleShortSentence(t *testing.T) {
	c := newTestChunker(Options{MinChunkTokens: 50}, nil)

	chunks := c.ChunkText(context.Background(), "Tiny proof. ", "doc")
	assert.Empty(t, chunks)
}

// A dropped sub-minimum candidate must not advance the overlap cursor: the
// next candidate still measures its gap from the last emitted chunk, and
// chunk IDs stay sequential with no holes.
func TestChunkTextDroppedCandidateKeepsOverlapCursor(t *testing.T) {
	opts := Options{
		OverlapTokens:       3,
		MaxChunkTokens:      512,
		MinChunkTokens:      10,
		SimilarityThreshold: 0.7,
	}
	// Force every sentence into its own unit.
	c := newTestChunker(opts, funcScorer(func(a, b string) float64 { return 0 }))

	long1 := strings.Repeat("a", 100)
	long2 := strings.Repeat("c", 100)
	text := long1 + ". " + "b. " + long2 + ". tail"

	sents := c.segmenter.Split(text)
	require.Len(t, sents, 3)

	chunks := c.ChunkText(context.Background(), text, "doc1")
	require.Len(t, chunks, 2)

	assert.Equal(t, "doc1_chunk_0", chunks[0].ChunkID)
	assert.Equal(t, "doc1_chunk_1", chunks[1].ChunkID)

	// Gap from the first emitted chunk's end (not from the dropped
	// middle candidate) is 3 bytes = 0 tokens, so the second chunk's
	// start extends backward by the full 3-token deficit: 12 bytes.
	assert.Equal(t, sents[1].Start, chunks[0].EndChar)
	assert.Equal(t, sents[2].Start-12, chunks[1].StartChar)
}

func TestChunkTextMetadata(t *testing.T) {
	opts := Options{
		OverlapTokens:       2,
		MaxChunkTokens:      50,
		MinChunkTokens:      2,
		SimilarityThreshold: 0.7,
	}
	// One unit, oversized, so sub-chunks carry sub_index provenance.
	c := newTestChunker(opts, funcScorer(func(a, b string) float64 { return 1 }))

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "We prove the theorem with equation %d and a matrix argument. ", i)
	}
	chunks := c.ChunkText(context.Background(), sb.String(), "doc")
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks {
		require.NotNil(t, ch.Metadata)
		assert.Equal(t, 0, ch.Metadata["unit_index"])
		assert.Contains(t, ch.Metadata, "sub_index")
		assert.Equal(t, true, ch.Metadata["has_math"])
	}
}

func TestWithOptionsSharesComponents(t *testing.T) {
	base := newTestChunker(Options{MaxChunkTokens: 512}, nil)

	derived := base.WithOptions(Options{MaxChunkTokens: 100, MinChunkTokens: 5})
	assert.Equal(t, 100, derived.opts.MaxChunkTokens)
	assert.Equal(t, 5, derived.opts.MinChunkTokens)
	assert.Equal(t, 512, base.opts.MaxChunkTokens)

	// Loaded components are shared, not re-probed.
	assert.Equal(t, base.tokens, derived.tokens)
	assert.Equal(t, base.segmenter, derived.segmenter)
	assert.Equal(t, base.scorer, derived.scorer)
}

func TestNewSelectsFallbacks(t *testing.T) {
	c := New(Options{DisableSentenceModel: true}, nil)

	modes := c.Modes()
	assert.Equal(t, "approximate", modes["segmenter"])
	assert.Equal(t, "approximate", modes["similarity"])
	assert.Contains(t, modes, "tokenizer")
}

func TestChunkDocumentRecords(t *testing.T) {
	opts := Options{
		OverlapTokens:       5,
		MaxChunkTokens:      512,
		MinChunkTokens:      1,
		SimilarityThreshold: 0.7,
	}
	text := "The Pythagorean theorem states that a² + b² = c². " +
		"This is a fundamental principle in geometry."

	chunks := ChunkDocument(context.Background(), text, "test_001", opts, nil)
	require.NotEmpty(t, chunks)

	records := ToRecords(chunks)
	require.Len(t, records, len(chunks))
	assert.Equal(t, "test_001_chunk_0", records[0].ChunkID)
	for i, r := range records {
		assert.Equal(t, chunks[i].Text, r.Text)
		assert.Greater(t, r.TokenLength, 0)
		require.NotNil(t, r.Metadata)
	}
	assert.Equal(t, true, records[0].Metadata["has_math"])
}
