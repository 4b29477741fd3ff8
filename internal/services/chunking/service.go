package chunking

import (
	"sync"

	"math-professor-rag/config"
	"math-professor-rag/internal/core/chunker"
	"math-professor-rag/internal/core/embed"
	"math-professor-rag/pkg/logger"
)

var (
	defaultChunker *chunker.SemanticChunker
	once           sync.Once
)

// Get returns the process-wide chunker, constructing it from config on
// first use. Returns nil only when construction panicked, in which case
// the HTTP layer answers 503.
func Get() *chunker.SemanticChunker {
	once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("chunking: chunker construction panicked: %v", r)
			}
		}()
		defaultChunker = chunker.New(OptionsFromConfig(), logger.Sink{})
	})
	return defaultChunker
}

// OptionsFromConfig maps the chunker config section onto core options,
// wiring the OpenAI embedder when an API key is configured.
func OptionsFromConfig() chunker.Options {
	cfg := config.Cfg.Chunker
	opts := chunker.Options{
		OverlapTokens:        cfg.OverlapTokens,
		MaxChunkTokens:       cfg.MaxChunkTokens,
		MinChunkTokens:       cfg.MinChunkTokens,
		SimilarityThreshold:  cfg.SimilarityThreshold,
		TokenizerEncoding:    cfg.TokenizerEncoding,
		DisableSentenceModel: !cfg.UseSentenceModel,
	}
	if key := config.Cfg.OpenAI.Key; key != "" {
		opts.Embedder = embed.NewClient(key, config.Cfg.OpenAI.EmbeddingModel)
	}
	return opts
}
