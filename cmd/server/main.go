package main

import (
	"context"
	"os/signal"
	"syscall"

	"crimewatch/internal/config"
	"crimewatch/internal/db"
	"crimewatch/internal/middleware"
	"crimewatch/internal/router"
	"crimewatch/internal/services"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading env vars from system")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.Migrate(conn); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}
	logger.Info("Database connection established")

	tokens, err := services.NewTokenService(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize token service")
	}

	cache, err := utils.NewCache(500)
	if err != nil {
		logger.WithError(err).Fatal("failed to create cache")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Alert delivery is optional: without Redis the API runs without it.
	var dispatcher *services.AlertDispatcher
	if cfg.RedisAddr != "" {
		dispatcher, err = services.NewAlertDispatcher(cfg, conn, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer dispatcher.Close()

		if cfg.WebhookURL != "" {
			worker := services.NewAlertWorker(dispatcher, logger, cfg.WebhookURL)
			go worker.Run(ctx)
			logger.Info("Alert webhook worker started")
		}
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	router.RegisterRoutes(r, router.Deps{
		DB:         conn,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Cache:      cache,
		Logger:     logger,
	})

	logger.Infof("crimewatch server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
