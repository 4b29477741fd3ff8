package chunk

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"

	"math-professor-rag/config"
	"math-professor-rag/internal/core/chunker"
	"math-professor-rag/internal/services/chunking"
	"math-professor-rag/pkg/apperror"
)

type chunkRequest struct {
	Text                string   `json:"text"`
	DocumentID          *string  `json:"document_id"`
	OverlapTokens       *int     `json:"overlap_tokens"`
	MaxChunkTokens      *int     `json:"max_chunk_tokens"`
	MinChunkTokens      *int     `json:"min_chunk_tokens"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

type chunkResponse struct {
	Success     bool             `json:"success"`
	Chunks      []chunker.Record `json:"chunks"`
	TotalChunks int              `json:"total_chunks"`
	DocumentID  *string          `json:"document_id"`
}

// HandleChunk splits the posted text into semantic chunks and returns them
// in index-ready record form.
func HandleChunk(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return apperror.BadRequest(config.ModuleChunk, c, "Missing request body")
	}

	var req chunkRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleChunk, c, "Invalid JSON in request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperror.BadRequest(config.ModuleChunk, c, "Missing required field: text")
	}

	svc := chunking.Get()
	if svc == nil {
		return apperror.ServiceUnavailable(config.ModuleChunk, c, "Chunking module not available. Please check dependencies.")
	}

	opts := chunking.OptionsFromConfig()
	if req.OverlapTokens != nil {
		opts.OverlapTokens = *req.OverlapTokens
	}
	if req.MaxChunkTokens != nil {
		opts.MaxChunkTokens = *req.MaxChunkTokens
	}
	if req.MinChunkTokens != nil {
		opts.MinChunkTokens = *req.MinChunkTokens
	}
	if req.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *req.SimilarityThreshold
	}

	docID := ""
	if req.DocumentID != nil {
		docID = *req.DocumentID
	}

	chunks := svc.WithOptions(opts).ChunkText(context.Background(), req.Text, docID)
	records := chunker.ToRecords(chunks)

	return c.Status(fiber.StatusOK).JSON(chunkResponse{
		Success:     true,
		Chunks:      records,
		TotalChunks: len(records),
		DocumentID:  req.DocumentID,
	})
}
