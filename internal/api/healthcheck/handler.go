package healthcheck

import (
	"github.com/gofiber/fiber/v3"

	"math-professor-rag/config"
	"math-professor-rag/internal/services/chunking"
	"math-professor-rag/pkg/apperror"
)

func ApiHealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "healthy",
		"chunking_available": chunking.Get() != nil,
	})
}

// ChunkerHealthCheck reports which variant each chunker component resolved
// to: precise (model-backed) or approximate (heuristic fallback).
func ChunkerHealthCheck(c fiber.Ctx) error {
	svc := chunking.Get()
	if svc == nil {
		return apperror.ServiceUnavailable(config.ModuleHealth, c, "Chunking module not available. Please check dependencies.")
	}
	return c.JSON(fiber.Map{
		"status":     "healthy",
		"components": svc.Modes(),
	})
}
