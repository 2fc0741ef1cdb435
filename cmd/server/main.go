package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentloop/service-booking/internal/application"
	"github.com/rentloop/service-booking/internal/auth"
	"github.com/rentloop/service-booking/internal/clock"
	"github.com/rentloop/service-booking/internal/config"
	bookingEvents "github.com/rentloop/service-booking/internal/events"
	"github.com/rentloop/service-booking/internal/handler"
	"github.com/rentloop/service-booking/internal/repository"
	"github.com/rentloop/service-booking/internal/settlement"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := newLogger(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.HoldModel{},
			&repository.RentalModel{},
			&repository.TransactionModel{},
			&repository.VendorEmployeeModel{},
			&repository.PricingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := bookingEvents.NewProducer(cfg.KafkaBrokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	uow := repository.NewGormUnitOfWork(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	holdRepo := repository.NewGormHoldRepository(db)
	rentalRepo := repository.NewGormRentalRepository(db)
	transactionRepo := repository.NewGormTransactionRepository(db)
	employeeRepo := repository.NewGormEmployeeRepository(db)
	pricingService := repository.NewGormPricingService(db)

	// Initialize application services
	authorizer := application.NewRBACAuthorizer(employeeRepo)
	settlementDelegate := settlement.NewKafkaSettlement(kafkaProducer, log)
	availabilityService := application.NewAvailabilityService(rentalRepo, bookingRepo, holdRepo, log)
	bookingService := application.NewBookingService(
		uow,
		bookingRepo,
		rentalRepo,
		transactionRepo,
		availabilityService,
		pricingService,
		authorizer,
		settlementDelegate,
		clock.NewSystem(),
		log,
	)

	// Initialize and start transaction event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaGroupPrefix + "booking-service"
	transactionConsumer := bookingEvents.NewTransactionEventConsumer(
		cfg.KafkaBrokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = transactionConsumer.Close() }()

	go func() {
		log.Info("starting transaction event consumer")
		if err := transactionConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("transaction event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	healthHandler := handler.NewHealthHandler(db)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(handler.RecoveryMiddleware(log))
	router.Use(handler.LoggerMiddleware(log))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.CORSMiddleware())

	// Register routes
	healthHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	availabilityHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		return zap.NewDevelopment(zap.Fields(zap.String("service", "service-booking")))
	}
	return zap.NewProduction(zap.Fields(zap.String("service", "service-booking")))
}
