package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/message-board/internal/cache"
	"github.com/Baaaki/message-board/internal/config"
	"github.com/Baaaki/message-board/internal/database"
	"github.com/Baaaki/message-board/internal/handler"
	"github.com/Baaaki/message-board/internal/middleware"
	"github.com/Baaaki/message-board/internal/repository"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is optional: without it the account cache and rate limiter are off
	var redisClient *redis.Client
	var accountCache service.AccountCache
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		accountCache = cache.NewAccountCache(redisClient, cfg.AccountCacheTTL)
	} else {
		logger.Log.Info("REDIS_URL not set, account cache and rate limiting disabled")
	}

	store := repository.NewStore(db)
	accountService := service.NewAccountService(store, accountCache)
	messageService := service.NewMessageService(store, accountService)

	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	accountHandler := handler.NewAccountHandler(accountService, handler.ListLimits{
		Default: cfg.AccountListDefaultLimit,
		Max:     cfg.AccountListMaxLimit,
	})
	messageHandler := handler.NewMessageHandler(messageService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.HSTS(cfg.IsProduction()),
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
	)
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
		})
		router.Use(limiter.Middleware())
	}

	handler.RegisterRoutes(router, healthHandler, accountHandler, messageHandler)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
