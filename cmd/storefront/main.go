package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/cache"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/httpapi"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := telemetry.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- tracing ---
	if cfg.TracingEnabled {
		shutdown, err := telemetry.SetupTracer(cfg.ServiceName, os.Stdout)
		if err != nil {
			return fmt.Errorf("setup tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// --- catalog ---
	static, err := catalog.LoadStatic()
	if err != nil {
		return fmt.Errorf("load static catalog: %w", err)
	}

	var provider catalog.Provider = catalog.NewStaticProvider(static)
	if cfg.CatalogSource == config.CatalogPostgres {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger.Named("migrate")); err != nil {
				return fmt.Errorf("db migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		pg := catalog.NewPostgresProvider(pool)
		if cfg.CatalogSeed {
			if err := pg.Seed(ctx, static); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
		}
		provider = pg
	}

	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		if err := cache.Ping(ctx, c); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			provider = catalog.NewCachedProvider(provider, c, cfg.CatalogCacheTTL, logger.Named("catalog"))
		}
	}

	// --- events ---
	var publisher session.EventsPublisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, cfg.ServiceName, logger.Named("events"))
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		defer pub.Close()
		publisher = pub
	}

	// --- sessions ---
	var history session.HistoryFunc
	if cfg.SeedOrderHistory {
		all, err := catalog.AllItems(ctx, provider)
		if err != nil {
			return fmt.Errorf("load catalog for order history: %w", err)
		}
		history = session.HistoryFromCatalog(all)
	}

	authn := auth.NewAuthenticator(cfg.AuthDelay, auth.WithLogger(logger.Named("auth")))
	sessionLogger := logger.Named("session")
	registry := session.NewRegistry(func(id string) *session.Controller {
		return session.New(id, authn,
			session.WithPublisher(publisher),
			session.WithHistory(history),
			session.WithCheckoutDelay(cfg.CheckoutDelay),
			session.WithNotificationTTL(cfg.NotificationTTL),
			session.WithLogger(sessionLogger))
	}, cfg.SessionIdleTTL, sessionLogger)
	go registry.Run(ctx, time.Minute)

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger.Named("http"),
		Catalog:          provider,
		Sessions:         registry,
		SessionCookie:    cfg.SessionCookie,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", srv.Addr), zap.String("catalog", cfg.CatalogSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
