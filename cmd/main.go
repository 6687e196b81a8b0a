package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront-service/internal/cache"
	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := migrateDatabase(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional: without it product lists are served from the
	// database on every request.
	var redisClient *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to parse Redis URL: %v", err)
		} else {
			redisClient = redis.NewClient(opt)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("Warning: Failed to connect to Redis: %v", err)
				log.Println("Continuing without Redis caching...")
				redisClient = nil
			} else {
				log.Println("✓ Connected to Redis for caching")
			}
		}
	} else {
		log.Println("REDIS_URL not configured, caching disabled")
	}

	// NATS is optional: without it product change events stay local.
	var eventsPublisher *events.Publisher
	if cfg.App.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.App.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS publisher: %v (continuing without events)", err)
			eventsPublisher = nil
		} else {
			log.Println("✓ NATS events publisher initialized")
		}
	} else {
		log.Println("NATS_URL not configured, events disabled")
	}

	var invalidator cache.Invalidator = cache.NoopInvalidator{}
	if redisClient != nil || eventsPublisher != nil {
		invalidator = cache.NewRedisInvalidator(redisClient, eventsPublisher, logger)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Initialize clients and services
	notificationClient := clients.NewNotificationClient(cfg.App.NotificationURL, logger)
	feedLoader := services.NewFeedLoader(cfg.App.FeedDir)

	importerService := services.NewImporterService(catalogRepo, feedLoader, invalidator, logger)
	cartService := services.NewCartService(cartRepo, logger)
	orderService := services.NewOrderService(orderRepo, invalidator, logger)
	contactService := services.NewContactService(contactRepo, notificationClient, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	contactHandler := handlers.NewContactHandler(contactService)
	importHandler := handlers.NewImportHandler(importerService)

	router := setupRouter(cfg, healthHandler, catalogHandler, cartHandler, orderHandler, contactHandler, importHandler)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down storefront service...")
		if eventsPublisher != nil {
			eventsPublisher.Close()
			log.Println("✓ Events publisher closed")
		}
		if redisClient != nil {
			redisClient.Close()
		}
		log.Println("Storefront service stopped")
		os.Exit(0)
	}()

	log.Printf("Starting storefront service on %s", cfg.GetServerAddress())
	if err := router.Run(cfg.GetServerAddress()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase initializes the database connection
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// migrateDatabase runs database migrations
func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Shop{},
		&models.Category{},
		&models.Product{},
		&models.ProductInfo{},
		&models.Parameter{},
		&models.ProductParameter{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Contact{},
		&models.ContactToken{},
	)
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(cfg *config.Config, healthHandler *handlers.HealthHandler, catalogHandler *handlers.CatalogHandler, cartHandler *handlers.CartHandler, orderHandler *handlers.OrderHandler, contactHandler *handlers.ContactHandler, importHandler *handlers.ImportHandler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SetupCORS())
	router.Use(middleware.Metrics())

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadyCheck)
	router.GET("/metrics", middleware.MetricsHandler())

	api := router.Group("/api/v1")
	if cfg.App.JWTSecret != "" {
		api.Use(middleware.Auth(cfg.App.JWTSecret))
	} else {
		log.Println("JWT_SECRET not configured, using development header auth")
		api.Use(middleware.DevAuth())
	}
	{
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/shops", catalogHandler.ListShops)

		cart := api.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/add", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.ClearCart)
		}

		api.POST("/confirm-order", orderHandler.ConfirmOrder)
		orders := api.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}

		contacts := api.Group("/contacts")
		{
			contacts.POST("", contactHandler.CreateContact)
			contacts.GET("", contactHandler.ListContacts)
			contacts.POST("/confirm", contactHandler.ConfirmContact)
			contacts.GET("/:id", contactHandler.GetContact)
			contacts.PUT("/:id", contactHandler.UpdateContact)
			contacts.DELETE("/:id", contactHandler.DeleteContact)
			contacts.POST("/:id/send-confirmation", contactHandler.SendConfirmation)
		}

		imports := api.Group("/import")
		{
			imports.POST("/shops/:id", importHandler.ImportShop)
			imports.POST("/all", importHandler.ImportAllShops)
		}
	}

	return router
}
