package apperror

import (
	"github.com/gofiber/fiber/v3"

	"math-professor-rag/config"
	"math-professor-rag/pkg/logger"
)

// ErrorResponse is the standardized HTTP error payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError logs a structured warning and returns a standardized JSON
// error envelope.
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// Shorthands for common error responses

func BadRequest(module config.Module, c fiber.Ctx, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, message)
}

func ServiceUnavailable(module config.Module, c fiber.Ctx, message string) error {
	return WriteError(module, c, fiber.StatusServiceUnavailable, message)
}

// InternalError writes a structured warning and returns a standardized JSON error
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	return WriteError(module, c, fiber.StatusInternalServerError, "Internal server error: "+err.Error())
}
