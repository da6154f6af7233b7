package main

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"github.com/ulule/limiter/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"salesku/internal/config"
	"salesku/internal/handlers"
	"salesku/internal/middleware"
	"salesku/internal/models"
	"salesku/internal/repositories"
	"salesku/internal/services"
	"salesku/internal/session"
	"salesku/pkg/geocode"
	"salesku/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Relational store ---
	// TranslateError turns unique-index violations into gorm.ErrDuplicatedKey,
	// which the user repository relies on for atomic username uniqueness.
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.SalesRecord{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Session stores ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	kv := session.NewRedisKV(redisClient)
	sessionStore := session.NewPlainStore(kv)

	// The encrypted store is provisioned alongside the plain one but carries
	// no traffic yet; sessions still live in the plain store.
	encKey, err := hex.DecodeString(cfg.SessionEncKey)
	if err != nil {
		log.Fatalf("SESSION_ENC_KEY is not valid hex: %v", err)
	}
	if _, err := session.NewEncryptedStore(kv, encKey); err != nil {
		log.Fatalf("Failed to provision encrypted session store: %v", err)
	}

	// --- RabbitMQ client ---
	// Event publication is best effort; the service runs without a broker.
	var mqClient *rabbitmq.Client
	if client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}); err != nil {
		log.Printf("Warning: RabbitMQ unavailable, sales events will not be published: %v", err)
	} else {
		mqClient = client
		defer mqClient.Close()
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	salesRepo := repositories.NewGORMSalesRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, sessionStore, cfg.JWTSecret)
	userService := services.NewUserService(userRepo)
	geocoder := geocode.NewClient(cfg.GeocodeURL)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	salesService := services.NewSalesService(salesRepo, geocoder, publisher)
	reportService := services.NewReportService(userRepo, salesRepo)

	// Seed the two default accounts on an empty store.
	if err := authService.Bootstrap(context.Background()); err != nil {
		log.Fatalf("Failed to bootstrap default accounts: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	salesHandler := handlers.NewSalesHandler(salesService)
	reportHandler := handlers.NewReportHandler(reportService)

	// --- Middleware ---
	authRequired := middleware.AuthRequired(authService)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	salesOnly := middleware.RequireRole(models.RoleSales)
	loginLimiter := middleware.LoginRateLimit(limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  10,
	})

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, loginLimiter, authRequired)
	userHandler.RegisterRoutes(apiV1, authRequired, adminOnly)
	salesHandler.RegisterRoutes(apiV1, authRequired, salesOnly)
	reportHandler.RegisterRoutes(apiV1, authRequired, adminOnly)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Sales event consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for sales events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received sales event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeSalesEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server gracefully stopped")
}
