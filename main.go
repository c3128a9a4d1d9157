package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"inventory/internal/models"
	"inventory/pkg/config"
	"inventory/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Logger ---
	zlog, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// --- Application ---
	app, err := NewApp(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to create app", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			zlog.Error("Error releasing resources", zap.Error(err))
		}
	}()

	// --- Product event consumer ---
	// Logs every product event; downstream projections hook in here.
	if app.MQ != nil {
		consumerLog := zlog.Named("events")
		err := app.MQ.ConsumeProductEvents(func(event models.ProductEvent) error {
			consumerLog.Info("Received product event",
				zap.String("type", event.Type),
				zap.String("product_id", event.ProductID),
				zap.String("sku", event.SKU))
			return nil
		})
		if err != nil {
			zlog.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Start HTTP Server ---
	zlog.Info("Starting server",
		zap.String("port", cfg.AppPort),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("cache", cfg.RedisAddr != ""),
		zap.Bool("events", cfg.RabbitMQURL != ""))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			zlog.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		zlog.Error("Error during Fiber shutdown", zap.Error(err))
	}
	zlog.Info("Server gracefully stopped")
}
