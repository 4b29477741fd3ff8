package chunker

import (
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// bytesPerToken is the heuristic ratio used when no subword tokenizer is
// available: one token per four bytes of text.
const bytesPerToken = 4

// TokenCounter counts subword tokens in a span and truncates a span to a
// token budget.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// tiktokenCounter counts true subword tokens via a tiktoken encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func newTiktokenCounter(encoding string) (*tiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (t *tiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate keeps the first maxTokens tokens via an encode/decode round trip.
func (t *tiktokenCounter) Truncate(text string, maxTokens int) string {
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}

// heuristicCounter approximates one token per four bytes. It never fails.
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	return len(text) / bytesPerToken
}

func (heuristicCounter) Truncate(text string, maxTokens int) string {
	limit := maxTokens * bytesPerToken
	if limit >= len(text) {
		return text
	}
	// Never cut inside a multi-byte rune.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
