package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"math-professor-rag/config"
	"math-professor-rag/internal/core/chunker"
	"math-professor-rag/internal/core/fetch"
	"math-professor-rag/internal/services/chunking"
	"math-professor-rag/pkg/logger"
)

// chunkcli chunks a local or s3:// document (.pdf or plain text) and
// prints the index-ready JSON records.
func main() {
	input := flag.String("input", "", "path or s3:// URI of the document (.pdf, .txt, .md)")
	docID := flag.String("doc-id", "", "document identifier used in chunk IDs")
	overlap := flag.Int("overlap-tokens", 0, "target overlap between chunks in tokens (0 = config default)")
	maxTokens := flag.Int("max-chunk-tokens", 0, "hard token cap per chunk (0 = config default)")
	minTokens := flag.Int("min-chunk-tokens", 0, "minimum tokens per emitted chunk (0 = config default)")
	threshold := flag.Float64("similarity-threshold", 0, "topic-shift similarity threshold (0 = config default)")
	output := flag.String("output", "", "write records to this file instead of stdout")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := config.Init("config.yaml"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	localPath, cleanup, err := fetch.ToLocalTemp(*input)
	if err != nil {
		log.Fatalf("failed to fetch %s: %v", *input, err)
	}
	defer cleanup()

	text, err := fetch.ExtractText(localPath)
	if err != nil {
		log.Fatalf("failed to extract text: %v", err)
	}

	opts := chunking.OptionsFromConfig()
	if *overlap > 0 {
		opts.OverlapTokens = *overlap
	}
	if *maxTokens > 0 {
		opts.MaxChunkTokens = *maxTokens
	}
	if *minTokens > 0 {
		opts.MinChunkTokens = *minTokens
	}
	if *threshold > 0 {
		opts.SimilarityThreshold = *threshold
	}

	chunks := chunker.ChunkDocument(context.Background(), text, *docID, opts, logger.Sink{})
	records := chunker.ToRecords(chunks)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode records: %v", err)
	}
	data = append(data, '\n')

	if *output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatalf("failed to write records: %v", err)
		}
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
}
