// Copyright (c) 2026 Backalley. All rights reserved.

// Command api is the entry point for the Backalley HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backalley/backalley/internal/api"
	"github.com/backalley/backalley/internal/authors/auth"
	"github.com/backalley/backalley/internal/forum/image"
	"github.com/backalley/backalley/internal/forum/post"
	"github.com/backalley/backalley/internal/forum/room"
	"github.com/backalley/backalley/internal/platform/config"
	"github.com/backalley/backalley/internal/platform/constants"
	"github.com/backalley/backalley/internal/platform/migration"
	pgstore "github.com/backalley/backalley/internal/platform/postgres"
	redisstore "github.com/backalley/backalley/internal/platform/redis"
	"github.com/backalley/backalley/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Backalley] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 7. Session Backend ────────────────────────────────────────────────
	// Both backends satisfy the same blind-store contract; SESSION_BACKEND
	// selects which one holds the tokens.
	var sessionStore auth.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		sessionStore = auth.NewRedisSessionStore(rdb)
	default:
		sessionStore = auth.NewPostgresSessionStore(pool)
	}
	sessionPolicy := auth.NewSessionPolicy(sessionStore, cfg.SessionTTL)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	hasher := sec.NewHasher(cfg.PasswordPepper)

	authorRepository := auth.NewAuthorRepository(pool)
	inviteLedger := auth.NewInviteLedger(pool)
	authService := auth.NewService(authorRepository, inviteLedger, sessionPolicy, hasher, cfg.InviteQuota)
	authHandler := auth.NewHandler(authService)

	roomRepository := room.NewRepository(pool)
	roomService := room.NewService(roomRepository)
	roomHandler := room.NewHandler(roomService)

	postRepository := post.NewRepository(pool)
	postService := post.NewService(postRepository, cfg.PostCooldown)
	postHandler := post.NewHandler(postService, roomService)

	signer, err := image.NewS3Signer(startupCtx, image.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	must(log, err, "initialize object storage signer")

	imageRepository := image.NewRepository(pool)
	imageService := image.NewService(imageRepository, signer, cfg.S3PublicBaseURL)
	imageHandler := image.NewHandler(imageService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Room:      roomHandler,
		Post:      postHandler,
		Image:     imageHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, sessionPolicy, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
