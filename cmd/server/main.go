package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/adapter/cache"
	"github.com/ommanoj88/sev-backend/internal/adapter/external/notification"
	"github.com/ommanoj88/sev-backend/internal/adapter/external/registry"
	"github.com/ommanoj88/sev-backend/internal/adapter/http/fiber/handlers"
	"github.com/ommanoj88/sev-backend/internal/adapter/http/fiber/middleware"
	"github.com/ommanoj88/sev-backend/internal/adapter/queue"
	"github.com/ommanoj88/sev-backend/internal/adapter/storage/memory"
	"github.com/ommanoj88/sev-backend/internal/adapter/storage/postgres"
	"github.com/ommanoj88/sev-backend/internal/adapter/vault"
	wsAdapter "github.com/ommanoj88/sev-backend/internal/adapter/websocket"
	"github.com/ommanoj88/sev-backend/internal/observability/telemetry"
	"github.com/ommanoj88/sev-backend/internal/ports"
	"github.com/ommanoj88/sev-backend/internal/service/availability"
	"github.com/ommanoj88/sev-backend/internal/service/booking"
	"github.com/ommanoj88/sev-backend/internal/service/catalog"
	"github.com/ommanoj88/sev-backend/internal/service/pricing"
	"github.com/ommanoj88/sev-backend/pkg/config"
)

const (
	serviceName    = "sev-backend"
	serviceVersion = "v1.0.0"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("starting charging reservation engine",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Vault overrides file/env secrets when enabled.
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Fatal("failed to connect to vault", zap.Error(err))
		}
		if dsn, err := secrets.GetDatabaseCredentials(); err == nil && dsn != "" {
			cfg.Database.URL = dsn
		}
		if secret, err := secrets.GetJWTSecret(); err == nil && secret != "" {
			cfg.JWT.Secret = secret
		}
	}

	if cfg.Tracing.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, serviceVersion, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// Storage driver selection.
	var (
		stationRepo ports.StationRepository
		resStore    ports.ReservationStore
		dbPing      func() error
	)
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewConnection(cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("failed to get underlying sql db", zap.Error(err))
		}
		defer sqlDB.Close()
		dbPing = sqlDB.Ping

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		stationRepo = postgres.NewStationRepository(db, logger)
		resStore = postgres.NewReservationStore(db, logger)
	default:
		stationRepo = memory.NewStationRepository()
		resStore = memory.NewReservationStore(logger)
		logger.Warn("using in-memory storage, reservations will not survive restarts")
	}

	var catalogCache ports.Cache
	if cfg.Redis.Enabled {
		catalogCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
	} else {
		catalogCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer catalogCache.Close()

	// Notification hook transport.
	var notifier ports.Notifier
	var messageQueue queue.MessageQueue
	switch cfg.Queue.Driver {
	case "nats":
		if messageQueue, err = queue.NewNATSQueue(cfg.Queue.URL, logger); err != nil {
			logger.Fatal("failed to connect to nats", zap.Error(err))
		}
	case "rabbitmq":
		if messageQueue, err = queue.NewRabbitMQQueue(cfg.Queue.URL, logger); err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
	}
	if messageQueue != nil {
		defer messageQueue.Close()
		notifier = notification.NewPublisher(messageQueue, logger)
	}

	var vehicleRegistry ports.VehicleRegistry
	if cfg.Registry.BaseURL != "" {
		vehicleRegistry = registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout, logger)
	} else {
		vehicleRegistry = memory.NewVehicleRegistry()
		logger.Warn("no vehicle registry configured, using empty in-memory registry")
	}

	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run()

	// Services.
	catalogService := catalog.NewService(stationRepo, catalogCache, cfg.Cache.StationTTL, logger)
	availabilityService := availability.NewService(catalogService, resStore, vehicleRegistry, availability.Window{
		OpenHour:           cfg.Booking.OpenHour,
		CloseHour:          cfg.Booking.CloseHour,
		GranularityMinutes: cfg.Booking.SlotGranularityMinutes,
	}, logger)
	estimator := pricing.NewEstimator(cfg.Booking.ChargingEfficiency)
	bookingService := booking.NewService(catalogService, vehicleRegistry, resStore, estimator, notifier, wsHub, cfg.Booking, logger)

	// Expiry sweep for abandoned pending reservations.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runExpirySweep(sweepCtx, bookingService, cfg.Jobs.ExpirySweepInterval, logger)

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.HTTP.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if dbPing != nil {
			if err := dbPing(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).SendString("database not ready")
			}
		}
		if err := catalogCache.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("cache not ready")
		}
		return c.SendString("Ready")
	})

	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(cfg.JWT.Secret))

	stationHandler := handlers.NewStationHandler(catalogService, logger)
	protected.Get("/stations", stationHandler.List)
	protected.Get("/stations/:id", stationHandler.Get)
	protected.Get("/stations/:id/ports", stationHandler.ListPorts)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, logger)
	protected.Get("/stations/:id/ports/:portId/availability", availabilityHandler.Slots)

	reservationHandler := handlers.NewReservationHandler(bookingService, logger)
	protected.Post("/reservations", reservationHandler.Create)
	protected.Get("/reservations", reservationHandler.List)
	protected.Get("/reservations/:id", reservationHandler.Get)
	protected.Post("/reservations/:id/confirm", reservationHandler.Confirm)
	protected.Post("/reservations/:id/cancel", reservationHandler.Cancel)
	protected.Post("/reservations/:id/start", reservationHandler.Start)
	protected.Post("/reservations/:id/complete", reservationHandler.Complete)
	protected.Post("/reservations/:id/no-show", reservationHandler.NoShow)
	protected.Post("/reservations/:id/reminder", reservationHandler.ToggleReminder)

	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.Put("/stations", stationHandler.Upsert)
	admin.Patch("/stations/:id/ports/:portId/status", stationHandler.SetPortStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		wsHub.AddClient(c)
	}))

	go func() {
		logger.Info("starting http server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

// runExpirySweep periodically cancels pending reservations that were
// never confirmed within the grace period.
func runExpirySweep(ctx context.Context, svc ports.BookingService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := svc.ExpirePending(ctx); err != nil {
				logger.Error("expiry sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
