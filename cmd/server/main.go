package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/account-service/config"
	"github.com/ErlanBelekov/account-service/internal/email"
	"github.com/ErlanBelekov/account-service/internal/health"
	"github.com/ErlanBelekov/account-service/internal/identity"
	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	redisinfra "github.com/ErlanBelekov/account-service/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/account-service/internal/log"
	"github.com/ErlanBelekov/account-service/internal/metrics"
	"github.com/ErlanBelekov/account-service/internal/token"
	httptransport "github.com/ErlanBelekov/account-service/internal/transport/http"
	"github.com/ErlanBelekov/account-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/ErlanBelekov/account-service/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if cfg.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.DatabaseURL, logger); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	issuer := token.NewIssuer([]byte(cfg.JWTSecret))
	provider := identity.NewProvider(cfg.Env, cfg.IdentityProviderURL, cfg.IdentityProviderKey, cfg.IdentityProviderTimeout, logger)

	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}

	// Provider tokens are verified remotely; cache the result when Redis is available.
	var providerVerifier identity.Verifier = identity.NewProviderVerifier(provider)
	authOpts := []usecase.AuthOption{}
	if cfg.RedisURL != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		cached := identity.NewCachedVerifier(providerVerifier, redisinfra.NewIdentityCache(rdb), cfg.IdentityCacheTTL, logger)
		providerVerifier = cached
		authOpts = append(authOpts, usecase.WithIdentityEviction(cached))
		deps = append(deps, health.Dependency{
			Name:   "redis",
			Pinger: health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
	}
	verifier := identity.Chain{identity.NewSessionVerifier(issuer), providerVerifier}

	validator := validation.New()

	// Auth
	mailer := email.NewSender(cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authOpts = append(authOpts, usecase.WithWelcomeEmail(mailer))
	authUsecase := usecase.NewAuthUsecase(userRepo, provider, issuer, logger, authOpts...)
	authHandler := handler.NewAuthHandler(authUsecase, validator, logger)

	// Profile
	profileUsecase := usecase.NewProfileUsecase(userRepo)
	profileHandler := handler.NewProfileHandler(profileUsecase, validator, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, profileHandler, verifier, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	if cfg.HealthProbeSchedule != "" {
		stopProbing, err := checker.StartProbing(ctx, cfg.HealthProbeSchedule)
		if err != nil {
			stop()
			log.Fatalf("health probe: %v", err)
		}
		defer stopProbing()
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
