package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ecom_inventory/pkg/config"
	"ecom_inventory/pkg/controllers/admin"
	"ecom_inventory/pkg/controllers/auth"
	"ecom_inventory/pkg/controllers/customer"
	"ecom_inventory/pkg/database"
	"ecom_inventory/pkg/logger"
	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/routes"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const uploadsPath = "/uploads"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logr.Sync()

	// Initialize database
	logr.Info("initializing database connection", zap.String("driver", cfg.DatabaseDriver))
	db, err := database.Open(cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close(db, logr)

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logr.Info("database migrations completed")
	}

	// Initialize image storage
	images, closeImages, err := newImageStore(context.Background(), cfg)
	if err != nil {
		logr.Fatal("failed to initialize image storage", zap.Error(err))
	}
	defer closeImages()
	logr.Info("image storage initialized", zap.String("driver", cfg.StorageDriver))

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logr))
	router.Use(middleware.RecoveryMiddleware(logr))

	setupCORS(router, cfg, logr)

	// Multipart limit leaves headroom over the image cap
	router.MaxMultipartMemory = 10 << 20

	setupRoutes(router, cfg, db, images, logr)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Server startup in goroutine
	go func() {
		logr.Info("server listening",
			zap.String("environment", cfg.Environment),
			zap.String("addr", "http://localhost:"+cfg.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logr.Info("server exited gracefully")
}

func newImageStore(ctx context.Context, cfg *config.Config) (services.ImageStore, func(), error) {
	switch cfg.StorageDriver {
	case "gcs":
		store, err := services.NewGCSImageStore(ctx, cfg.GCPBucketName, cfg.GoogleApplicationCredentials)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "local":
		store, err := services.NewLocalImageStore(cfg.UploadDir, uploadsPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// setupCORS allows the configured origins in production and any origin in
// development.
func setupCORS(router *gin.Engine, cfg *config.Config, logr *zap.Logger) {
	isProduction := cfg.IsProduction()

	defaultOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}

	allowOrigins := defaultOrigins
	if cfg.AllowedOrigins != "" {
		allowOrigins = parseOrigins(cfg.AllowedOrigins)
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Range", "X-Content-Range", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if isProduction {
		corsConfig.AllowOrigins = allowOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return true // Allow all origins in development
		}
	}

	router.Use(cors.New(corsConfig))

	if isProduction {
		logr.Info("CORS enabled", zap.Strings("origins", allowOrigins))
	} else {
		logr.Info("CORS enabled for all origins (development mode)")
	}
}

// parseOrigins splits comma-separated origin string
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setupRoutes wires services into handlers and mounts every route
func setupRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, images services.ImageStore, logr *zap.Logger) {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)

	inventory := services.NewInventoryService(db, logr)
	orders := services.NewOrderService(db, logr, cfg.AuditOrderStock)
	catalog := services.NewCatalogService(db, images, logr)

	// Root route
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Inventory backend is running...")
	})

	if cfg.StorageDriver == "local" {
		router.Static(uploadsPath, cfg.UploadDir)
	}

	routes.Register(router, tokens, routes.Handlers{
		Auth:     auth.NewHandler(services.NewAuthService(db, tokens, logr), logr),
		Admin:    admin.NewHandler(db, catalog, inventory, orders, logr),
		Customer: customer.NewHandler(orders, logr),
	})

	// Health check route
	router.GET("/api/health", func(c *gin.Context) {
		status, dbStatus := http.StatusOK, "connected"
		if err := database.Ping(c.Request.Context(), db); err != nil {
			logr.Warn("health check database ping failed", zap.Error(err))
			status, dbStatus = http.StatusServiceUnavailable, "unreachable"
		}
		c.JSON(status, gin.H{
			"status":      http.StatusText(status),
			"environment": cfg.Environment,
			"database":    dbStatus,
		})
	})

	router.NoRoute(middleware.NotFoundHandler())
}
