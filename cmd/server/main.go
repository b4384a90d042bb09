package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/config"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	routingEvents "github.com/Kilat-Pet-Delivery/service-routing/internal/events"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/latest"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/repository"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/routingapi"
	"github.com/Kilat-Pet-Delivery/service-routing/migrations"
	"github.com/Kilat-Pet-Delivery/service-routing/web"
)

const serviceName = "service-routing"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-routing",
		zap.String("port", cfg.Port),
		zap.Duration("debounce", cfg.Debounce),
		zap.Bool("plans_enabled", cfg.PlansEnabled),
	)

	if cfg.RoutingAPI.Token == "" {
		log.Warn("ROUTING_ROUTING_API_TOKEN is not set; upstream calls will be rejected")
	}

	// Connect to database
	var db *gorm.DB
	if cfg.PlansEnabled {
		db = connectDatabase(cfg, log)
	}

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Info("no Kafka brokers configured; events are not published")
	}

	// Initialize routing API client
	client, err := routingapi.NewClient(routingapi.Config{
		BaseURL: cfg.RoutingAPI.BaseURL,
		Token:   cfg.RoutingAPI.Token,
		Timeout: cfg.RoutingAPI.Timeout,
	}, log.Named("routing-api"))
	if err != nil {
		log.Fatal("failed to create routing API client", zap.Error(err))
	}

	// Initialize application services
	scale := traffic.DefaultGradient()
	coordinator := latest.NewCoordinator(cfg.Debounce)
	routeService := application.NewRouteService(client, coordinator, scale, publisher, log)
	tableService := application.NewTableService(client, coordinator, scale, publisher, log)
	geocodeService := application.NewGeocodeService(client, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewMapHandler(cfg.Map, cfg.Debounce.Milliseconds(), web.IndexHTML).RegisterRoutes(&router.RouterGroup)
	handler.NewRoutingHandler(routeService, tableService).RegisterRoutes(&router.RouterGroup)
	handler.NewGeocodeHandler(geocodeService).RegisterRoutes(&router.RouterGroup)
	handler.NewTrafficHandler(scale).RegisterRoutes(&router.RouterGroup)

	if db != nil {
		planRepo := repository.NewGormPlanRepository(db)
		planService := application.NewPlanService(planRepo, routeService, publisher, log)
		handler.NewPlanHandler(planService).RegisterRoutes(&router.RouterGroup)

		// Start plan command consumer in a goroutine
		if cfg.KafkaConfig.Enabled() {
			groupID := cfg.KafkaConfig.GroupPrefix + "routing-service"
			commandConsumer := routingEvents.NewPlanCommandConsumer(
				cfg.KafkaConfig.Brokers,
				groupID,
				planService,
				log,
			)
			defer func() { _ = commandConsumer.Close() }()

			go func() {
				log.Info("starting plan command consumer")
				if err := commandConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("plan command consumer error", zap.Error(err))
				}
			}()
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RoutingAPI.Timeout + cfg.Debounce + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-routing...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-routing stopped")
}

func connectDatabase(cfg *config.ServiceConfig, log *zap.Logger) *gorm.DB {
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.PlanModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), migrations.FS, ".", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return db
}
