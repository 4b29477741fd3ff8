package chunker

import (
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSegmenter splits raw text into ordered sentences with byte
// offsets. An empty or whitespace-only input yields no sentences.
type SentenceSegmenter interface {
	Split(text string) []Sentence
}

// punktSegmenter segments with the trained punkt sentence boundary model
// and recovers exact offsets by locating each sentence in the source text.
type punktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func newPunktSegmenter() (*punktSegmenter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &punktSegmenter{tokenizer: tok}, nil
}

func (p *punktSegmenter) Split(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := p.tokenizer.Tokenize(text)
	out := make([]Sentence, 0, len(raw))
	cursor := 0
	for _, s := range raw {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[cursor:], trimmed)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(trimmed)
		out = append(out, Sentence{Text: trimmed, Start: start, End: end})
		cursor = end
	}
	return out
}

// sentenceDelims marks a boundary at runs of terminal punctuation followed
// by whitespace, or a period and whitespace directly preceding an
// uppercase letter.
var sentenceDelims = regexp.MustCompile(`[.!?]+\s+|\.\s+[A-Z]`)

// regexSegmenter is the approximate fallback segmenter. Offsets are
// tracked with a running cursor and can drift from true source positions;
// downstream overlap math only requires them to be internally consistent,
// so the drift is preserved rather than corrected.
type regexSegmenter struct{}

func (regexSegmenter) Split(text string) []Sentence {
	matches := sentenceDelims.FindAllStringIndex(text, -1)

	// Interleave text and delimiter segments the way a capture-group split
	// would, then stitch them back together pairwise. The remainder after
	// the final delimiter is not emitted.
	parts := make([]string, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		parts = append(parts, text[prev:m[0]], text[m[0]:m[1]])
		prev = m[1]
	}
	parts = append(parts, text[prev:])

	var out []Sentence
	pos := 0
	for i := 0; i+1 < len(parts); i += 2 {
		sentence := parts[i] + parts[i+1]
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		start := pos
		end := pos + len(sentence)
		out = append(out, Sentence{Text: strings.TrimSpace(sentence), Start: start, End: end})
		pos = end
	}
	return out
}
