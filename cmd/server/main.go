// Command server runs the library lending API.
//
// Startup sequence: load config, initialise the logger, connect MongoDB and
// Redis, ensure indexes, start the notification dispatcher and the
// availability reconciler, then serve HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenfield-library/lending-system/internal/api"
	"github.com/greenfield-library/lending-system/internal/api/metrics"
	"github.com/greenfield-library/lending-system/internal/core/ports"
	"github.com/greenfield-library/lending-system/internal/core/service"
	mongorepo "github.com/greenfield-library/lending-system/internal/infrastructure/db/mongo"
	redisconn "github.com/greenfield-library/lending-system/internal/infrastructure/db/redis"
	"github.com/greenfield-library/lending-system/internal/infrastructure/notify"
	"github.com/greenfield-library/lending-system/internal/pkg/config"
	"github.com/greenfield-library/lending-system/pkg/logger"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting lending system")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongorepo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisconn.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(db, cfg.Mongo.UsersCollection)
	bookRepo := mongorepo.NewBookRepository(db, cfg.Mongo.BooksCollection)
	requestRepo := mongorepo.NewRequestRepository(db, cfg.Mongo.RequestsCollection)

	for name, fn := range map[string]func(context.Context) error{
		"users":    userRepo.EnsureIndexes,
		"books":    bookRepo.EnsureIndexes,
		"requests": requestRepo.EnsureIndexes,
	} {
		if err := fn(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Notifications ---
	notifier := notify.NewRedisNotifier(rdb, cfg.Notify.Topic)
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, notifier, log)
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, dispatcher, cfg.JWTSecret, tokenTTL)
	catalogService := service.NewCatalogService(bookRepo, dispatcher, log)
	requestService := service.NewRequestService(requestRepo, bookRepo, userRepo, dispatcher, log)

	go runReconciler(ctx, requestService, cfg.Reconcile.Interval, log)

	// --- HTTP ---
	e := api.NewRouter(db, rdb, api.Services{
		Auth:    authService,
		Catalog: catalogService,
		Request: requestService,
	}, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped")
}

// runReconciler periodically repairs availability flags for books whose
// approval won the conditional write but whose book update was lost.
func runReconciler(ctx context.Context, svc ports.RequestService, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			repaired, err := svc.ReconcileAvailability(ctx)
			if err != nil {
				metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Msg("availability reconciliation failed")
				continue
			}
			metrics.ReconcileRunsTotal.WithLabelValues("ok").Inc()
			metrics.ReconcileRepairsTotal.Add(float64(repaired))
			if repaired > 0 {
				log.Warn().Int("repaired", repaired).Msg("availability drift repaired")
			}
		}
	}
}
