// Package chunker splits free-form mathematical text into overlapping,
// semantically coherent chunks sized for embedding and vector indexing.
//
// The pipeline is: sentence segmentation, topic-shift detection via
// semantic similarity, grouping into semantic units, greedy splitting of
// oversized units, and overlap-aware assembly under a hard token budget.
// Every optional dependency (subword tokenizer, sentence boundary model,
// embedding model) has a deterministic heuristic fallback, so a chunking
// run never fails for well-formed input; quality degrades instead.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Logger is the observability sink injected at construction. It replaces
// process-wide logging state inside the core.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{}) {}

// Options configures a SemanticChunker. Zero numeric fields are replaced
// with defaults by New.
type Options struct {
	// OverlapTokens is the target backward overlap between consecutive
	// chunks, in tokens.
	OverlapTokens int
	// MaxChunkTokens is the hard cap per chunk, enforced by truncation.
	MaxChunkTokens int
	// MinChunkTokens drops chunks below this size; they are never merged.
	MinChunkTokens int
	// SimilarityThreshold marks a topic boundary when adjacent sentences
	// score strictly below it.
	SimilarityThreshold float64
	// TokenizerEncoding names the tiktoken encoding for precise token
	// counting. Defaults to cl100k_base.
	TokenizerEncoding string
	// DisableSentenceModel skips the punkt model and forces the regex
	// fallback segmenter.
	DisableSentenceModel bool
	// Embedder, when set, enables embedding-backed similarity. When nil
	// the word-overlap fallback is used.
	Embedder Embedder
}

// DefaultOptions returns the standard chunking budgets.
func DefaultOptions() Options {
	return Options{
		OverlapTokens:       150,
		MaxChunkTokens:      512,
		MinChunkTokens:      50,
		SimilarityThreshold: 0.7,
		TokenizerEncoding:   "cl100k_base",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.OverlapTokens <= 0 {
		o.OverlapTokens = def.OverlapTokens
	}
	if o.MaxChunkTokens <= 0 {
		o.MaxChunkTokens = def.MaxChunkTokens
	}
	if o.MinChunkTokens <= 0 {
		o.MinChunkTokens = def.MinChunkTokens
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = def.SimilarityThreshold
	}
	if o.TokenizerEncoding == "" {
		o.TokenizerEncoding = def.TokenizerEncoding
	}
	return o
}

// SemanticChunker holds the resolved components for its lifetime. They are
// loaded once at construction and used read-only, so one instance may
// serve concurrent calls.
type SemanticChunker struct {
	opts      Options
	tokens    TokenCounter
	segmenter SentenceSegmenter
	scorer    SimilarityScorer
	log       Logger
}

// New constructs a chunker, probing each optional component once and
// falling back to its heuristic variant when unavailable. Construction
// never fails.
func New(opts Options, log Logger) *SemanticChunker {
	if log == nil {
		log = nopLogger{}
	}
	opts = opts.withDefaults()

	c := &SemanticChunker{opts: opts, log: log}

	if counter, err := newTiktokenCounter(opts.TokenizerEncoding); err != nil {
		log.Warnf("chunker: tiktoken encoding %q unavailable: %v; using byte-ratio fallback", opts.TokenizerEncoding, err)
		c.tokens = heuristicCounter{}
	} else {
		log.Infof("chunker: using tiktoken %q for token counting", opts.TokenizerEncoding)
		c.tokens = counter
	}

	c.segmenter = regexSegmenter{}
	if !opts.DisableSentenceModel {
		if seg, err := newPunktSegmenter(); err != nil {
			log.Warnf("chunker: sentence model unavailable: %v; using regex fallback", err)
		} else {
			log.Infof("chunker: punkt sentence model loaded")
			c.segmenter = seg
		}
	}

	if opts.Embedder != nil {
		c.scorer = &embeddingScorer{embedder: opts.Embedder, log: log}
		log.Infof("chunker: embedding-backed similarity enabled")
	} else {
		c.scorer = jaccardScorer{}
		log.Infof("chunker: no embedder configured; using word-overlap similarity")
	}
	return c
}

// WithOptions returns a chunker that shares this chunker's loaded
// components but applies the given budgets. Component probing is not
// repeated; TokenizerEncoding, DisableSentenceModel and Embedder in opts
// are ignored.
func (c *SemanticChunker) WithOptions(opts Options) *SemanticChunker {
	clone := *c
	clone.opts = opts.withDefaults()
	return &clone
}

// Modes reports which variant each optional component resolved to,
// "precise" (model-backed) or "approximate" (heuristic).
func (c *SemanticChunker) Modes() map[string]string {
	modes := map[string]string{
		"tokenizer":  "approximate",
		"segmenter":  "approximate",
		"similarity": "approximate",
	}
	if _, ok := c.tokens.(*tiktokenCounter); ok {
		modes["tokenizer"] = "precise"
	}
	if _, ok := c.segmenter.(*punktSegmenter); ok {
		modes["segmenter"] = "precise"
	}
	if _, ok := c.scorer.(*embeddingScorer); ok {
		modes["similarity"] = "precise"
	}
	return modes
}

// ChunkText runs the full pipeline over text and returns the ordered chunk
// sequence. Empty and whitespace-only input yields an empty result. All
// intermediate state lives within the call; nothing persists across calls.
func (c *SemanticChunker) ChunkText(ctx context.Context, text, documentID string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return []Chunk{}
	}
	c.log.Infof("chunker: starting semantic chunking for text of length %d", len(text))

	sents := c.segmenter.Split(text)
	c.log.Infof("chunker: split into %d sentences", len(sents))
	if len(sents) == 0 {
		return []Chunk{}
	}

	shifts := c.findTopicShifts(ctx, sents)
	units := groupSentences(sents, shifts)
	c.log.Infof("chunker: %d topic shift points, %d semantic units", len(shifts), len(units))

	chunks := make([]Chunk, 0, len(units))
	previousEnd := -1

	for unitIdx, unit := range units {
		unitText := joinSentences(unit)

		if c.tokens.Count(unitText) > c.opts.MaxChunkTokens {
			for subIdx, span := range c.splitLargeUnit(unit) {
				chunkText, start, end := c.assembleWithOverlap(text, span.start, span.end, previousEnd)
				tokenLen := c.tokens.Count(chunkText)
				if tokenLen < c.opts.MinChunkTokens {
					// Dropped candidates do not advance previousEnd: the
					// next candidate's overlap window still measures from
					// the last emitted chunk.
					continue
				}
				chunks = append(chunks, Chunk{
					ChunkID:     chunkID(documentID, len(chunks)),
					Text:        chunkText,
					TokenLength: tokenLen,
					StartChar:   start,
					EndChar:     end,
					Metadata: map[string]any{
						"unit_index": unitIdx,
						"sub_index":  subIdx,
						"has_math":   DetectMathematicalConcepts(chunkText),
					},
				})
				previousEnd = end
			}
			continue
		}

		chunkText, start, end := c.assembleWithOverlap(text, unit[0].Start, unit[len(unit)-1].End, previousEnd)
		tokenLen := c.tokens.Count(chunkText)
		if tokenLen < c.opts.MinChunkTokens {
			continue
		}
		chunks = append(chunks, Chunk{
			ChunkID:     chunkID(documentID, len(chunks)),
			Text:        chunkText,
			TokenLength: tokenLen,
			StartChar:   start,
			EndChar:     end,
			Metadata: map[string]any{
				"unit_index": unitIdx,
				"has_math":   DetectMathematicalConcepts(chunkText),
			},
		})
		previousEnd = end
	}

	c.log.Infof("chunker: created %d chunks", len(chunks))
	return chunks
}

// findTopicShifts scans adjacent sentence pairs and records index i+1 as a
// shift point when the pair scores strictly below the threshold; the shift
// is attributed to the sentence that starts the new topic.
func (c *SemanticChunker) findTopicShifts(ctx context.Context, sents []Sentence) []int {
	if len(sents) <= 1 {
		return nil
	}
	var shifts []int
	for i := 0; i+1 < len(sents); i++ {
		if c.scorer.Score(ctx, sents[i].Text, sents[i+1].Text) < c.opts.SimilarityThreshold {
			shifts = append(shifts, i+1)
		}
	}
	return shifts
}

// groupSentences partitions sentences into contiguous semantic units,
// starting a new unit at every shift index. The units partition the
// sentence sequence exactly.
func groupSentences(sents []Sentence, shifts []int) [][]Sentence {
	if len(sents) == 0 {
		return nil
	}
	shiftSet := make(map[int]bool, len(shifts))
	for _, i := range shifts {
		shiftSet[i] = true
	}

	var units [][]Sentence
	current := []Sentence{sents[0]}
	for i := 1; i < len(sents); i++ {
		if shiftSet[i] {
			units = append(units, current)
			current = []Sentence{sents[i]}
			continue
		}
		current = append(current, sents[i])
	}
	units = append(units, current)
	return units
}

type span struct {
	start int
	end   int
}

// splitLargeUnit greedily packs consecutive sentences into sub-chunks near
// (but not exceeding) the max token budget. First-fit by sequence order:
// order preservation takes priority over pack tightness, and a single
// over-budget sentence becomes its own sub-chunk for downstream truncation.
func (c *SemanticChunker) splitLargeUnit(unit []Sentence) []span {
	if len(unit) == 0 {
		return nil
	}
	if c.tokens.Count(joinSentences(unit)) <= c.opts.MaxChunkTokens {
		return []span{{start: unit[0].Start, end: unit[len(unit)-1].End}}
	}

	var spans []span
	var current []Sentence
	currentTokens := 0

	for _, sent := range unit {
		sentTokens := c.tokens.Count(sent.Text)
		if currentTokens+sentTokens <= c.opts.MaxChunkTokens {
			current = append(current, sent)
			currentTokens += sentTokens
			continue
		}
		if len(current) > 0 {
			spans = append(spans, span{start: current[0].Start, end: current[len(current)-1].End})
		}
		current = []Sentence{sent}
		currentTokens = sentTokens
	}
	if len(current) > 0 {
		spans = append(spans, span{start: current[0].Start, end: current[len(current)-1].End})
	}
	return spans
}

// assembleWithOverlap extends the candidate's start backward into the
// previous chunk's tail until the gap covers the overlap budget, then
// slices the source and truncates to the max token budget if needed.
// Extension is backward-only, so start offsets stay monotonic across the
// output while each chunk keeps continuity with its predecessor's tail.
func (c *SemanticChunker) assembleWithOverlap(fullText string, start, end, previousEnd int) (string, int, int) {
	if end > len(fullText) {
		end = len(fullText)
	}
	actualStart, actualEnd := start, end

	if previousEnd >= 0 && previousEnd < start {
		gapTokens := c.tokens.Count(fullText[previousEnd:start])
		if gapTokens < c.opts.OverlapTokens {
			deficit := c.opts.OverlapTokens - gapTokens
			extendStart := start - deficit*bytesPerToken
			if extendStart < 0 {
				extendStart = 0
			}
			for extendStart > 0 && !utf8.RuneStart(fullText[extendStart]) {
				extendStart--
			}
			actualStart = extendStart
		}
	}

	chunkText := fullText[actualStart:actualEnd]
	if c.tokens.Count(chunkText) > c.opts.MaxChunkTokens {
		truncated := c.tokens.Truncate(chunkText, c.opts.MaxChunkTokens)
		actualEnd = actualStart + len(truncated)
		chunkText = truncated
	}
	return chunkText, actualStart, actualEnd
}

func joinSentences(sents []Sentence) string {
	texts := make([]string, len(sents))
	for i, s := range sents {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

func chunkID(documentID string, index int) string {
	if documentID == "" {
		documentID = "doc"
	}
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// ChunkDocument chunks text with a freshly constructed chunker; callers
// serving repeated requests should hold a SemanticChunker instead so model
// probing is amortized.
func ChunkDocument(ctx context.Context, text, documentID string, opts Options, log Logger) []Chunk {
	return New(opts, log).ChunkText(ctx, text, documentID)
}
