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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"variations-service/internal/config"
	"variations-service/internal/events"
	"variations-service/internal/handlers"
	"variations-service/internal/middleware"
	"variations-service/internal/repository"
	"variations-service/internal/services"
	"variations-service/internal/subscribers"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Product Variations API
// @version 1.0.0
// @description Variation types, options and priced variant grids for products, with storefront resolution

// @contact.name Products API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8089
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	variationsRepo := repository.NewVariationsRepository(db, redisClient)

	// Events are only published when NATS_URL is set
	var eventsPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
			eventsPublisher = nil
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	var publisher services.EventPublisher
	if eventsPublisher != nil {
		publisher = eventsPublisher
	}
	variationService := services.NewVariationService(variationsRepo, publisher, cfg.Settings(), logger)

	var productSubscriber *subscribers.ProductSubscriber
	if cfg.NATSURL != "" {
		productSubscriber, err = subscribers.NewProductSubscriber(cfg.NATSURL, variationService, logger)
		if err != nil {
			log.Printf("WARNING: Failed to create product subscriber: %v (deleted products will keep their variations)", err)
		} else {
			go func() {
				if err := productSubscriber.Start(context.Background()); err != nil {
					log.Printf("WARNING: Failed to start product subscriber: %v", err)
				}
			}()
			log.Println("✓ Product subscriber started")
		}
	}

	productsHandler := handlers.NewProductsHandler(variationService)
	variationsHandler := handlers.NewVariationsHandler(variationService)
	storefrontHandler := handlers.NewStorefrontHandler(variationService)
	healthHandler := handlers.NewHealthHandler(variationsRepo)

	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("variations-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("variations-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	metrics := gosharedmw.InitGlobalMetrics("tesseract", "variations_service")
	log.Println("✓ Prometheus metrics initialized")

	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMw := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("variations-service"))
	router.Use(gosharedmw.CompressionMiddleware())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	api := router.Group("/api/v1")

	istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
	istioAuth := gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true, // Allow X-User-ID, X-Tenant-ID during migration
		Logger:             istioAuthLogger,
	})

	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
		api.Use(middleware.TenantMiddleware())
	} else {
		api.Use(istioAuth)
		api.Use(gosharedmw.VendorScopeFilter())
	}

	read := rbacMw.RequirePermission(rbac.PermissionProductsRead)
	create := rbacMw.RequirePermission(rbac.PermissionProductsCreate)
	update := rbacMw.RequirePermission(rbac.PermissionProductsUpdate)
	remove := rbacMw.RequirePermission(rbac.PermissionProductsDelete)

	products := api.Group("/products")
	{
		products.GET("", read, productsHandler.GetProducts)
		products.POST("", create, productsHandler.CreateProduct)
		products.GET("/:id", read, productsHandler.GetProduct)
		products.PUT("/:id", update, productsHandler.UpdateProduct)
		products.DELETE("/:id", remove, productsHandler.DeleteProduct)

		// Variation types and options
		products.POST("/:id/variation-types", update, variationsHandler.CreateVariationType)
		products.PUT("/:id/variation-types/:typeId", update, variationsHandler.UpdateVariationType)
		products.DELETE("/:id/variation-types/:typeId", update, variationsHandler.DeleteVariationType)
		products.POST("/:id/variation-types/:typeId/options", update, variationsHandler.CreateVariationOption)
		products.PUT("/:id/variation-types/:typeId/options/:optionId", update, variationsHandler.UpdateVariationOption)
		products.DELETE("/:id/variation-types/:typeId/options/:optionId", update, variationsHandler.DeleteVariationOption)

		// Variant grid
		products.GET("/:id/variations", read, variationsHandler.GetVariations)
		products.PUT("/:id/variations", update, variationsHandler.SaveVariations)
		products.GET("/:id/variations/export", rbacMw.RequirePermission(rbac.PermissionProductsExport), variationsHandler.ExportVariations)
		products.POST("/:id/variations/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), variationsHandler.ImportVariations)
	}

	// Public storefront endpoints: tenant context only
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware())
	{
		storefront.GET("/products/:id", storefrontHandler.GetProduct)
		storefront.POST("/products/:id/resolve", storefrontHandler.ResolveSelection)
		storefront.POST("/products/:id/cart-quote", storefrontHandler.QuoteCartLine)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Variations service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down variations-service...")

	if productSubscriber != nil {
		productSubscriber.Stop()
	}

	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Variations service stopped")
}
