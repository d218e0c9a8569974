package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	httpapi "weatherdesk/internal/api/http"
	"weatherdesk/internal/config"
	"weatherdesk/internal/records"
	"weatherdesk/internal/store"
	"weatherdesk/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls. The fixed timeout is
	// the only cancellation policy; there are no retries.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Record store: MySQL when a DSN is configured, in-memory otherwise.
	var recordStore records.Store
	if cfg.DatabaseDSN != "" {
		mysqlStore, err := store.NewMySQLStore(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("failed to open record store: %v", err)
		}
		defer mysqlStore.Close()
		recordStore = mysqlStore
	} else {
		log.Printf("INFO: DATABASE_DSN not set; using in-memory record store")
		recordStore = store.NewMemoryStore()
	}

	// Provider clients, constructed once and passed in explicitly.
	owm := weather.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey)
	meteo := weather.NewOpenMeteoClient(httpClient)

	svc := records.NewService(recordStore, owm, meteo)

	// HTML engine for the server-rendered pages. Weather descriptions come
	// back lowercase from the provider; the title func cleans them up.
	engine := html.New("./views", ".html")
	titleCaser := cases.Title(language.English)
	engine.AddFunc("title", func(s string) string {
		return titleCaser.String(s)
	})
	engine.AddFunc("degrees", func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%.0f", *v)
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		Views:                 engine,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.AppName,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, owm, svc)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
