// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

// Command api is the entry point for the FERCEN HTTP API server.
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

	"github.com/fercen/fercen/internal/api"
	"github.com/fercen/fercen/internal/energy/bill"
	"github.com/fercen/fercen/internal/platform/cache"
	"github.com/fercen/fercen/internal/platform/config"
	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/mail"
	"github.com/fercen/fercen/internal/platform/migration"
	pgstore "github.com/fercen/fercen/internal/platform/postgres"
	redisstore "github.com/fercen/fercen/internal/platform/redis"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/account"
	"github.com/fercen/fercen/internal/users/invite"
	"github.com/fercen/fercen/internal/users/session"
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

	log.Info("[FERCEN] service_initializing")

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

	// ── 6. Platform Services ──────────────────────────────────────────────
	signer, err := sec.NewCookieSigner(cfg.CookieSecret, constants.SessionIssuer)
	must(log, err, "initialize cookie signer")

	var mailer mail.Mailer
	if cfg.MailingAPIKey != "" {
		mailer = mail.NewMailgunSender(cfg.MailingDomain, cfg.MailingAPIKey, cfg.MailingSender, log)
	} else {
		log.Warn("mailing_credentials_missing_using_log_sender")
		mailer = mail.NewLoggerSender(log)
	}

	lists := cache.NewLists(rdb, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	inviteRepository := invite.NewPostgresRepository(pool)
	inviteService := invite.NewService(inviteRepository, mailer, cfg.BaseURL, log)
	inviteHandler := invite.NewHandler(inviteService)

	userRepository := account.NewPostgresRepository(pool)
	recoveryRepository := account.NewPostgresRecoveryRepository(pool)
	accountService := account.NewService(userRepository, recoveryRepository, inviteService, mailer, cfg.BaseURL, log)
	accountHandler := account.NewHandler(accountService)

	sessionStore := session.NewRedisStore(rdb)
	sessionService := session.NewService(sessionStore, userRepository, signer, log)
	sessionHandler := session.NewHandler(sessionService, cfg.IsProduction())

	billRepository := bill.NewPostgresRepository(pool)
	billService := bill.NewService(billRepository, lists, log)
	billHandler := bill.NewHandler(billService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   sessionHandler,
		Account:   accountHandler,
		Invite:    inviteHandler,
		Bill:      billHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, sessionService, handlers)

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
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
