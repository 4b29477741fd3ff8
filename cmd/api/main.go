package main

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"math-professor-rag/config"
	"math-professor-rag/internal/api/chunk"
	"math-professor-rag/internal/api/healthcheck"
	"math-professor-rag/internal/middleware"
	"math-professor-rag/internal/services/chunking"
	"math-professor-rag/pkg/logger"
)

func main() {
	app := fiber.New(fiber.Config{
		AppName:     config.Cfg.Server.AppName,
		BodyLimit:   config.Cfg.Server.BodyLimit,
		Concurrency: config.Cfg.Server.Concurrency,
	})

	middleware.Setup(app, config.Cfg.Server.Concurrency)
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.Cfg.Cors.AllowOrigins,
		AllowMethods: config.Cfg.Cors.AllowMethods,
		AllowHeaders: config.Cfg.Cors.AllowHeaders,
	}))

	// Warm the chunker so model probing happens before traffic arrives.
	if chunking.Get() == nil {
		logger.Errorf("chunker unavailable; /chunk will answer 503")
	}

	// routes
	healthcheck.RegisterRoutes(app)
	chunk.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
