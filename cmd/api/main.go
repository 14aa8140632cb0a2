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

	"distancematrix/internal/commute"
	commuteclient "distancematrix/internal/commute/client"
	"distancematrix/internal/distancematrix"
	"distancematrix/internal/events"
	"distancematrix/internal/history"
	apphttp "distancematrix/internal/http"
	"distancematrix/internal/http/router"
	"distancematrix/internal/maps"
	"distancematrix/internal/web"
	"distancematrix/platform/cache"
	"distancematrix/platform/config"
	"distancematrix/platform/db"
	"distancematrix/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	health := make(map[string]apphttp.HealthChecker)

	if !cfg.IsDistanceMatrixEnabled() {
		log.Warn("GOOGLE_MAPS_API_KEY not configured; commute reports will fail upstream")
	}

	lookupCache := distancematrix.Cache(distancematrix.NewMemoryCache(cfg.GetCacheTTL()))
	if cfg.IsRedisEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis; using in-memory cache", "error", err)
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
			lookupCache = distancematrix.NewRedisCache(redisClient, cfg.GetCacheTTL())
			health["redis"] = cache.NewHealthAdapter(redisClient)
			log.Info("redis lookup cache enabled")
		}
	}

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		log.Info("database connection established")

		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, history.Migrations, history.MigrationsDir)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
		health["database"] = pool
	} else {
		log.Warn("DATABASE_URL not configured; commute history disabled")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	provider := distancematrix.NewCachedProvider(distancematrix.NewClient(cfg, log), lookupCache, log)
	commuteModule := commute.NewModule(provider, cfg, eventBus, log)
	mapsModule := maps.NewModule(cfg, log)

	sessions := web.NewStore(commuteclient.New(cfg.GetCommuteBackendURL(), log), cfg.GetSessionTTL(), log)
	go sessions.Run(ctx, sessionSweepInterval)
	webModule := web.NewModule(sessions, mapsModule.Service(), log)

	modules := []apphttp.Module{commuteModule, mapsModule, webModule}

	if pool != nil {
		historyModule := history.NewModule(history.NewRepository(pool), log)
		historyModule.RegisterHandlers(eventBus)
		modules = append(modules, historyModule)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		if err := eventBus.Wait(shutdownCtx); err != nil {
			log.Warn("pending event handlers did not finish", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
