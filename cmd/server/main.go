package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/api"
	"github.com/hugh/kanmind/internal/auth"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/comments"
	"github.com/hugh/kanmind/internal/database"
	"github.com/hugh/kanmind/internal/metrics"
	"github.com/hugh/kanmind/internal/tasks"
	"github.com/hugh/kanmind/pkg/config"
	"github.com/hugh/kanmind/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting kanmind server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	m := metrics.New()
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Error("failed to register query metrics", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get database handle", "error", err)
		os.Exit(1)
	}
	if err := m.RegisterDBStats(sqlDB, cfg.Database.Name); err != nil {
		logger.Warn("failed to register connection pool metrics", "error", err)
	}

	// Redis only backs the token cache; without it keys resolve from the database
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, token cache disabled", "error", err)
		redisClient.Close()
		redisClient = nil
	}

	if cfg.Token.Secret == "change-me-in-production" && !cfg.Server.IsDevelopment() {
		logger.Warn("TOKEN_SECRET is the default value")
	}
	tokens := auth.NewTokenIssuer(db, cfg.Token.Secret, logger)
	if redisClient != nil {
		tokens = tokens.WithCache(auth.NewRedisTokenCache(redisClient), cfg.Token.CacheTTL())
	}
	users := auth.NewService(db, tokens, logger)

	authz := access.NewAuthorizer()
	boardStore := boards.NewStore(db, authz, logger).WithCreatedCounter(m.BoardsCreated)
	taskStore := tasks.NewStore(db, authz, logger).WithCreatedCounter(m.TasksCreated)
	commentStore := comments.NewStore(db, authz, logger).WithCounters(m.CommentsCreated, m.CommentsDeleted)

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Users:          users,
		Tokens:         tokens,
		Boards:         boardStore,
		Tasks:          taskStore,
		Comments:       commentStore,
		Metrics:        m,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
	})
	defer router.Close()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB.Close()

	logger.Info("server stopped")
}
