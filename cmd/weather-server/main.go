package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init("weather-server", cfg.Env, cfg.LogLevel)

	// The search log owns the database handle for the lifetime of the process.
	searches, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open search log")
	}
	defer func() {
		if err := searches.Close(); err != nil {
			log.Error().Err(err).Msg("error closing search log")
		}
	}()

	sched := scheduler.New(searches, cfg.HistoryRetention, cfg.RetentionInterval)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	appConfig := httpapi.NewAppConfig(cfg.ProxyHeader)
	appConfig.AppName = "weather-lookup"
	appConfig.DisableStartupMessage = true
	app := fiber.New(appConfig)

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	httpapi.RegisterRoutes(app, searches)

	if !httpapi.RegisterStatic(app, cfg.StaticDir) {
		log.Warn().Str("dir", cfg.StaticDir).Msg("static directory not found; front-end disabled")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
