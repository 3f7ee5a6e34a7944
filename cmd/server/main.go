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

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/owwn/internal/auth"
	"github.com/mmynk/owwn/internal/cache"
	"github.com/mmynk/owwn/internal/config"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/service"
	"github.com/mmynk/owwn/internal/storage/sqlite"
	"github.com/mmynk/owwn/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.App.LogLevel)
	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DB.Path)

	balances, closeCache := newBalanceCache(cfg, logger)
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := &services{
		auth:   service.NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, logger),
		groups: service.NewGroupService(store, balances, logger),
		ledger: service.NewLedgerService(store, balances, m, logger),
	}

	router := newRouter(cfg, svc, jwtManager, m, reg, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Connect server starting", "address", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down", "timeout", cfg.App.ShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// newBalanceCache connects to Redis when configured. An unreachable Redis
// disables caching rather than failing startup.
func newBalanceCache(cfg *config.Config, logger *slog.Logger) (cache.BalanceCache, func()) {
	if !cfg.CacheEnabled() {
		logger.Info("Balance cache disabled")
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, balance cache disabled", "addr", cfg.Redis.Addr, "error", err)
		client.Close()
		return cache.Noop{}, func() {}
	}

	logger.Info("Balance cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.BalanceTTL)
	return cache.NewRedisCache(client, cfg.Redis.BalanceTTL), func() { client.Close() }
}
