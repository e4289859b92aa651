package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/config"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/pkg/broker"
	"github.com/chickencore/order-service/pkg/cache"
	"github.com/chickencore/order-service/pkg/logger"
	"github.com/chickencore/order-service/pkg/postgres"
	"github.com/chickencore/order-service/pkg/search"

	"github.com/chickencore/order-service/internal/auth"
	authH "github.com/chickencore/order-service/internal/auth/handler"
	authRepoPkg "github.com/chickencore/order-service/internal/auth/repository"
	authUCPkg "github.com/chickencore/order-service/internal/auth/usecase"

	catH "github.com/chickencore/order-service/internal/category/handler"
	catRepoPkg "github.com/chickencore/order-service/internal/category/repository"
	catUCPkg "github.com/chickencore/order-service/internal/category/usecase"

	prodH "github.com/chickencore/order-service/internal/product/handler"
	prodRepoPkg "github.com/chickencore/order-service/internal/product/repository"
	prodUCPkg "github.com/chickencore/order-service/internal/product/usecase"

	invH "github.com/chickencore/order-service/internal/inventory/handler"
	invRepoPkg "github.com/chickencore/order-service/internal/inventory/repository"
	invUCPkg "github.com/chickencore/order-service/internal/inventory/usecase"

	cartH "github.com/chickencore/order-service/internal/cart/handler"
	cartRepoPkg "github.com/chickencore/order-service/internal/cart/repository"
	cartUCPkg "github.com/chickencore/order-service/internal/cart/usecase"

	schedH "github.com/chickencore/order-service/internal/scheduling/handler"
	schedRepoPkg "github.com/chickencore/order-service/internal/scheduling/repository"
	schedUCPkg "github.com/chickencore/order-service/internal/scheduling/usecase"

	orderH "github.com/chickencore/order-service/internal/order/handler"
	orderRepoPkg "github.com/chickencore/order-service/internal/order/repository"
	orderUCPkg "github.com/chickencore/order-service/internal/order/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka Producer
	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProducer.Close()
	appLogger.Info("Connected to Kafka Producer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 7. Initialize Repositories
	authRepo := authRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	schedRepo := schedRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	authUC := authUCPkg.NewAuthUseCase(authRepo, tokens, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, invRepo, cfg.Orders.TaxRate, appLogger)
	schedUC := schedUCPkg.NewSchedulingUseCase(schedRepo, cartUC, redisClient, cfg.Orders.MaxScheduleDays, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cartUC, schedUC, redisClient, kafkaProducer, cfg.Orders, appLogger)

	// 9. Initialize Handlers
	authHandler := authH.NewAuthHandler(authUC, appLogger)
	catHandler := catH.NewCategoryHandler(catUC)
	prodHandler := prodH.NewProductHandler(prodUC)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	cartHandler := cartH.NewCartHandler(cartUC)
	schedHandler := schedH.NewSchedulingHandler(schedUC)
	orderHandler := orderH.NewOrderHandler(orderUC)

	// 10. Router
	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.POST("/auth/login", authHandler.Login)
	if cfg.Server.AllowRegistration {
		v1.POST("/auth/register", authHandler.Register)
	}

	v1.GET("/categories", catHandler.List)
	v1.GET("/categories/:id", catHandler.Get)
	v1.GET("/products", prodHandler.List)
	v1.GET("/products/:id", prodHandler.Get)
	v1.GET("/gifts/available", prodHandler.AvailableGifts)
	v1.GET("/scheduling/week", schedHandler.WeekInfo)

	protected := v1.Group("", auth.Middleware(tokens))
	{
		protected.GET("/cart", cartHandler.Get)
		protected.DELETE("/cart", cartHandler.Clear)
		protected.POST("/cart/items", cartHandler.AddItem)
		protected.PUT("/cart/items/:itemId", cartHandler.UpdateItem)
		protected.DELETE("/cart/items/:itemId", cartHandler.RemoveItem)

		protected.POST("/checkout", orderHandler.Checkout)
		protected.GET("/orders", orderHandler.List)
		protected.GET("/orders/:id", orderHandler.Get)
		protected.POST("/orders/:id/cancel", orderHandler.Cancel)

		protected.POST("/scheduling/validate", schedHandler.Validate)
	}

	admin := protected.Group("", auth.RequireRole(model.RoleAdmin))
	{
		admin.POST("/categories", catHandler.Create)
		admin.PUT("/categories/:id", catHandler.Update)
		admin.DELETE("/categories/:id", catHandler.Delete)

		admin.POST("/products", prodHandler.Create)
		admin.PUT("/products/:id", prodHandler.Update)
		admin.DELETE("/products/:id", prodHandler.Delete)
		admin.POST("/products/:id/stock", invHandler.AdjustStock)
		admin.GET("/inventory/movements", invHandler.ListMovements)

		admin.GET("/scheduling/rules", schedHandler.ListRules)
		admin.POST("/scheduling/rules", schedHandler.CreateRule)
		admin.PUT("/scheduling/rules/:id", schedHandler.UpdateRule)
		admin.DELETE("/scheduling/rules/:id", schedHandler.DeleteRule)

		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		admin.GET("/reports/orders/today", orderHandler.Today)
		admin.GET("/reports/orders/scheduled", orderHandler.Scheduled)
		admin.GET("/reports/orders/stats", orderHandler.Stats)
	}

	// 11. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
