package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"math-professor-rag/config"
)

func doRequest(t *testing.T, handler fiber.Handler) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestBadRequest(t *testing.T) {
	status, out := doRequest(t, func(c fiber.Ctx) error {
		return BadRequest(config.ModuleChunk, c, "Missing required field: text")
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, out.Success)
	assert.Equal(t, "Missing required field: text", out.Error)
}

func TestServiceUnavailable(t *testing.T) {
	status, out := doRequest(t, func(c fiber.Ctx) error {
		return ServiceUnavailable(config.ModuleChunk, c, "Chunking module not available. Please check dependencies.")
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.False(t, out.Success)
	assert.Equal(t, "Chunking module not available. Please check dependencies.", out.Error)
}

func TestInternalError(t *testing.T) {
	status, out := doRequest(t, func(c fiber.Ctx) error {
		return InternalError(config.ModuleServer, c, errors.New("boom"))
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.False(t, out.Success)
	assert.Equal(t, "Internal server error: boom", out.Error)
}
