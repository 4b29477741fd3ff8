package chunker

import (
	"regexp"
	"strings"
)

// mathPatterns covers mathematical vocabulary, action verbs, object nouns,
// comparison operators, and common mathematical symbols.
var mathPatterns = []string{
	`\b(theorem|lemma|corollary|proof|definition|proposition)\b`,
	`\b(solve|calculate|compute|derive|prove|show)\b`,
	`\b(equation|formula|expression|function|variable)\b`,
	`[=<>≤≥≠≈]`,
	`\b(integral|derivative|limit|sum|product)\b`,
	`\b(matrix|vector|scalar|tensor)\b`,
	`[∫∑∏√∞]`,
	`\b(example|problem|solution|step)\b`,
}

var mathRegex = regexp.MustCompile(`(?i)` + strings.Join(mathPatterns, "|"))

// DetectMathematicalConcepts reports whether the text contains
// mathematical terminology or symbols. Deterministic, no failure mode.
func DetectMathematicalConcepts(text string) bool {
	return mathRegex.MatchString(text)
}
