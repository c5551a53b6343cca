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
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/cache"
	"github.com/talentnet/backend/internal/config"
	"github.com/talentnet/backend/internal/database"
	"github.com/talentnet/backend/internal/handlers"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/presence"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/storage"
	"github.com/talentnet/backend/internal/telemetry"
	"github.com/talentnet/backend/internal/websocket"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	if err := run(cfg); err != nil {
		logger.FatalWithFields("Server exited with error", err)
	}
	logger.Log.Info("Server exited")
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Log.Info("=== TalentNet server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.String("presence_policy", cfg.WebSocket.PresencePolicy.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.WarnWithFields("Tracer shutdown failed", err)
			}
		}()
	}

	if err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.LogLevel == "debug"); err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if cfg.Telemetry.Enabled {
		if err := database.EnableTracing(database.DB, cfg.DatabaseDriver); err != nil {
			return err
		}
	}
	if err := database.Migrate(database.DB); err != nil {
		return err
	}

	users := repository.NewUserRepository(database.DB)
	authService := auth.NewService(users, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL))

	registry := presence.NewRegistry(cfg.WebSocket.PresencePolicy)
	hub := websocket.NewHub(registry)
	hub.SetRateLimitConfig(websocket.RateLimitConfig{
		MaxMessagesPerSecond: cfg.WebSocket.RateLimit,
		BurstSize:            cfg.WebSocket.RateBurst,
	})

	health := map[string]healthCheck{
		"database": func(context.Context) error { return database.Health() },
	}

	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, presence will not be mirrored", err)
		} else {
			defer func() { _ = redisClient.Close() }()

			mirror := presence.NewRedisMirror(redisClient)
			mirror.Start(ctx)
			defer mirror.Stop()

			hub.SetObserver(mirror)
			health["redis"] = redisClient.Ping
		}
	}

	go hub.Run()

	h := handlers.NewHandlers(authService, users)
	h.SetPresence(registry)
	h.SetSocial(repository.NewFollowRepository(database.DB), repository.NewPostRepository(database.DB))

	if cfg.StorageEnabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.BaseURL)
		if err != nil {
			logger.WarnWithFields("S3 unavailable, media uploads disabled", err)
		} else {
			h.SetUploader(uploader)
			health["storage"] = uploader.CheckBucketAccess
			logger.Log.Info("Media uploads enabled",
				zap.String("bucket", cfg.Storage.Bucket),
				zap.String("region", cfg.Storage.Region))
		}
	} else {
		logger.Log.Info("MEDIA_BUCKET not set, media uploads disabled")
	}

	wsHandler := websocket.NewHandler(hub, authService, users, websocket.HandlerConfig{
		RequireAuth:    cfg.WebSocket.RequireAuth,
		AllowedOrigins: allowedOrigins(cfg.FrontendURL),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(routerDeps{
		config:   cfg,
		handlers: h,
		ws:       wsHandler,
		tokens:   authService,
		health:   health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("TalentNet backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// sockets are hijacked and not tracked by srv, so the hub closes them first
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.WarnWithFields("Realtime hub shutdown warning", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
