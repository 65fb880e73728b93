package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/restaurant-reviews/api/controllers"
	"github.com/angelmondragon/restaurant-reviews/api/routes"
	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/internal/auth"
	"github.com/angelmondragon/restaurant-reviews/internal/ratings"
	"github.com/angelmondragon/restaurant-reviews/internal/restaurants"
	"github.com/angelmondragon/restaurant-reviews/internal/reviews"
	"github.com/angelmondragon/restaurant-reviews/internal/users"
	"github.com/angelmondragon/restaurant-reviews/pkg/config"
	"github.com/angelmondragon/restaurant-reviews/pkg/db"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
	"github.com/angelmondragon/restaurant-reviews/pkg/metrics"
	"github.com/angelmondragon/restaurant-reviews/pkg/migrate"
	"github.com/angelmondragon/restaurant-reviews/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	params := routes.RouterParams{
		Config:  cfg,
		Logger:  logg,
		Pingers: map[string]controllers.Pinger{"database": dbClient},
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		params.RateLimits = redisClient
		params.Idempotency = redisClient
		params.Pingers["redis"] = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting and idempotent replay disabled")
	}

	var registerer prometheus.Registerer
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer = registry
		params.HTTPMetrics = metrics.NewHTTPMetrics(registry)
		params.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	userRepo := users.NewRepository(dbClient.DB())
	restaurantRepo := restaurants.NewRepository(dbClient.DB())

	params.Guard, err = access.NewGuard(userRepo, cfg.JWT)
	exitOnError(ctx, logg, "failed to create access guard", err)

	params.Auth, err = auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOnError(ctx, logg, "failed to create auth service", err)

	params.Users, err = users.NewService(userRepo)
	exitOnError(ctx, logg, "failed to create user service", err)

	params.Restaurants, err = restaurants.NewService(restaurantRepo)
	exitOnError(ctx, logg, "failed to create restaurant service", err)

	aggregator, err := ratings.NewAggregator(ratings.AggregatorParams{
		Store:     ratings.NewRepository(dbClient.DB()),
		Logger:    logg,
		Metrics:   metrics.NewRatingMetrics(registerer),
		Serialize: cfg.Ratings.SerializeRecompute,
	})
	exitOnError(ctx, logg, "failed to create rating aggregator", err)

	params.Reviews, err = reviews.NewService(reviews.ServiceParams{
		Repo:        reviews.NewRepository(dbClient.DB()),
		Restaurants: restaurantRepo,
		Ratings:     aggregator,
		Logger:      logg,
	})
	exitOnError(ctx, logg, "failed to create review service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := server.Shutdown(shutdownCtx)
	if redisClient != nil {
		errs = multierr.Append(errs, redisClient.Close())
	}
	errs = multierr.Append(errs, dbClient.Close())
	if errs != nil {
		logg.Error(serverCtx, "shutdown finished with errors", errs)
		exitCode = 1
	} else {
		logg.Info(serverCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

func exitOnError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
