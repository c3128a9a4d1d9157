package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/pkg/config"
	"inventory/pkg/database"
	"inventory/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DriverMemory keeps products in process memory only.
const DriverMemory = "memory"

// App wires configuration, storage, messaging and the HTTP server together.
type App struct {
	Fiber   *fiber.App
	Service *services.ProductService
	MQ      *rabbitmq.Client

	log     *zap.Logger
	db      *gorm.DB
	redis   *redis.Client
	closers []func() error
}

// NewApp builds the application from cfg. Redis and RabbitMQ are optional
// and only used when their address is configured.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{log: log}

	repo, err := a.openRepository(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = mqClient
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient
	}

	a.Service = services.NewProductService(repo, publisher, log.Named("products"))

	if cfg.SeedProducts {
		seedProducts(a.Service, log)
	}

	a.Fiber = a.newServer(cfg)
	return a, nil
}

func (a *App) openRepository(cfg *config.Config) (repositories.ProductRepository, error) {
	var repo repositories.ProductRepository
	switch cfg.DatabaseDriver {
	case DriverMemory:
		repo = repositories.NewMockProductRepository()
	default:
		db, err := database.Open(database.Config{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseDSN,
			MaxIdleConns:    cfg.DatabaseMaxIdleConns,
			MaxOpenConns:    cfg.DatabaseMaxOpenConns,
			ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
			LogLevel:        database.ParseLogLevel(cfg.DatabaseLogLevel),
		})
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		repo = repositories.NewGORMProductRepository(db)
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, a.redis.Close)
		repo = repositories.NewCachedProductRepository(repo, a.redis, cfg.RedisCacheTTL, a.log.Named("cache"))
	}
	return repo, nil
}

func (a *App) newServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.ServiceName,
		ErrorHandler: handlers.ErrorHandler,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics(cfg.ServiceName, registry)

	// --- Middleware ---
	app.Use(middleware.RequestID(a.log))
	app.Use(httpMetrics.Middleware())
	app.Use(middleware.AccessLog())
	// Inside AccessLog so a recovered panic is logged and counted as a 500.
	app.Use(recover.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(a.Service).RegisterRoutes(apiV1)

	app.Get("/metrics", httpMetrics.Handler())
	app.Get("/health", a.handleHealth)
	return app
}

// handleHealth reports whether the configured backing services respond.
func (a *App) handleHealth(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if a.db != nil {
		if err := database.Ping(a.db); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if a.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if a.MQ != nil {
		checks["rabbitmq"] = "connected"
	}

	status, code := "healthy", fiber.StatusOK
	if !healthy {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"checks": checks,
	})
}

// Close releases every resource opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// seedProducts creates a few demo products. Already existing SKUs are skipped.
func seedProducts(service *services.ProductService, log *zap.Logger) {
	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", SKU: "SKU-LAPTOP01", Price: decimal.RequireFromString("1200.00"), Quantity: 10, Status: models.StatusActive},
		{Name: "Keyboard", Description: "Mechanical keyboard", SKU: "SKU-KEYBRD01", Price: decimal.RequireFromString("75.00"), Quantity: 25, Status: models.StatusActive},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", SKU: "SKU-MOUSE001", Price: decimal.RequireFromString("25.00"), Quantity: 0, Status: models.StatusOutOfStock},
	}

	for i := range products {
		created, err := service.Create(context.Background(), &products[i])
		if err != nil {
			if services.IsSkuAlreadyExists(err) {
				continue
			}
			log.Warn("Error seeding product", zap.String("sku", products[i].SKU), zap.Error(err))
			continue
		}
		log.Info("Seeded product", zap.String("sku", created.SKU), zap.String("product_id", created.ID))
	}
}
