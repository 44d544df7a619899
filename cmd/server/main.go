package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"truckload/internal/api"
	"truckload/internal/config"
	"truckload/internal/obs"
)

// clientConfigFiles maps client name to its YAML configuration path,
// loaded once at startup.
var clientConfigFiles = map[string]string{
	"cencosud": "configs/cencosud.yaml",
	"nestle":   "configs/cencosud.yaml",
	"smu":      "configs/smu.yaml",
	"walmart":  "configs/walmart.yaml",
}

func main() {
	appLog := obs.New()

	registry, err := config.Load("configs", clientConfigFiles)
	if err != nil {
		appLog.Error("failed to load client configuration", "error", err.Error())
		os.Exit(1)
	}
	env := registry.Env()

	app := fiber.New(fiber.Config{
		AppName:      "truckload optimizer",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		BodyLimit:    16 * 1024 * 1024, // spreadsheet uploads
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	sem := api.NewSemaphore()
	api.SetupRoutes(app, registry, sem, appLog)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		appLog.Info("shutting down gracefully")
		_ = app.Shutdown()
	}()

	port := getEnvOrDefault("PORT", "8080")
	appLog.Info("truckload optimizer starting", "port", port, "frontend_origin", env.FrontendOrigin)

	if err := app.Listen(":" + port); err != nil {
		appLog.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
