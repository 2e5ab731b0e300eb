package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/spa-backend/api/routes"
	"github.com/angelmondragon/spa-backend/internal/announcements"
	"github.com/angelmondragon/spa-backend/internal/booking"
	"github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/internal/catalog"
	"github.com/angelmondragon/spa-backend/internal/checkins"
	"github.com/angelmondragon/spa-backend/internal/hours"
	"github.com/angelmondragon/spa-backend/internal/terminal"
	"github.com/angelmondragon/spa-backend/internal/webhooks"
	squarewebhook "github.com/angelmondragon/spa-backend/internal/webhooks/square"
	stripewebhook "github.com/angelmondragon/spa-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
	"github.com/angelmondragon/spa-backend/pkg/migrate"
	"github.com/angelmondragon/spa-backend/pkg/redis"
	"github.com/angelmondragon/spa-backend/pkg/square"
	"github.com/angelmondragon/spa-backend/pkg/stripe"
)

const (
	webhookReplayTTL = 72 * time.Hour
	shutdownTimeout  = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	squareClient, err := square.NewClient(ctx, cfg.Square, logg)
	requireResource(ctx, logg, "square client", err)

	loc, err := cfg.Business.Location()
	requireResource(ctx, logg, "business timezone", err)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	var source catalog.Source
	if cfg.FeatureFlags.CatalogFromSquare() {
		source, err = catalog.NewSquareSource(squareClient)
	} else {
		source, err = catalog.NewDBSource(catalogRepo)
	}
	requireResource(ctx, logg, "catalog source", err)

	catalogSvc, err := catalog.New(source, catalog.Options{
		Cache:  redisClient,
		Keyer:  redisClient,
		TTL:    cfg.Storage.CatalogTTL,
		Logger: logg,
	})
	requireResource(ctx, logg, "catalog service", err)

	catalogAdmin, err := catalog.NewAdminService(catalogRepo, catalogSvc, logg)
	requireResource(ctx, logg, "catalog admin service", err)

	cartStorage, err := cart.NewRedisStorage(redisClient, redisClient, cfg.Storage.CartTTL)
	requireResource(ctx, logg, "cart storage", err)
	cartSvc, err := cart.NewService(cartStorage, catalogSvc, m, logg)
	requireResource(ctx, logg, "cart service", err)

	hoursSvc, err := hours.NewService(hours.NewRepository(dbClient.DB()), cfg.Business, logg)
	requireResource(ctx, logg, "hours service", err)

	handoff, err := booking.NewRedisHandoff(redisClient, redisClient, cfg.Storage.HandoffTTL)
	requireResource(ctx, logg, "booking handoff", err)
	scheduler, err := booking.NewSquareScheduler(squareClient)
	requireResource(ctx, logg, "booking scheduler", err)
	bookingSvc, err := booking.NewService(cartSvc, handoff, scheduler, hoursSvc, booking.Options{
		LocationID:  cfg.Square.LocationID,
		Location:    loc,
		HoldMinutes: cfg.Business.HoldMinutes,
		Locker:      redisClient,
		Metrics:     m,
		Logger:      logg,
	})
	requireResource(ctx, logg, "booking service", err)

	announcementsSvc, err := announcements.NewService(announcements.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "announcements service", err)

	checkInsSvc, err := checkins.NewService(checkins.NewRepository(dbClient.DB()), loc, logg)
	requireResource(ctx, logg, "check-ins service", err)

	deps := routes.Dependencies{
		DB:             dbClient,
		Redis:          redisClient,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Catalog:        catalogSvc,
		CatalogAdmin:   catalogAdmin,
		Cart:           cartSvc,
		Booking:        bookingSvc,
		Hours:          hoursSvc,
		Announcements:  announcementsSvc,
		CheckIns:       checkInsSvc,
	}

	// the terminal is optional; without a Stripe key its routes report unavailable
	if stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "stripe disabled, terminal routes unavailable")
	} else {
		deps.Terminal, err = terminal.NewService(stripeClient, cfg.Business, m, logg)
		requireResource(ctx, logg, "terminal service", err)
	}

	if cfg.Square.WebhookSecret != "" {
		deps.SquareWebhook, err = squarewebhook.NewService(catalogSvc, logg)
		requireResource(ctx, logg, "square webhook service", err)
		deps.SquareWebhookGuard, err = webhooks.NewIdempotencyGuard(redisClient, webhookReplayTTL, "square")
		requireResource(ctx, logg, "square webhook guard", err)
	}
	if cfg.Stripe.WebhookSecret != "" {
		deps.StripeWebhook, err = stripewebhook.NewService(m, logg)
		requireResource(ctx, logg, "stripe webhook service", err)
		deps.StripeWebhookGuard, err = webhooks.NewIdempotencyGuard(redisClient, webhookReplayTTL, "stripe")
		requireResource(ctx, logg, "stripe webhook guard", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"catalog_source": source.Name(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to initialize "+name, err)
	os.Exit(1)
}
