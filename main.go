package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/cache"
	"github.com/cakrabuana/payment-portal/internal/config"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/server"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	policy, err := access.LoadPolicy(cfg.AccessPolicyFile)
	if err != nil {
		logger.Fatal("load access policy", zap.Error(err))
	}

	renderer, err := render.New(logger.Named("render"))
	if err != nil {
		logger.Fatal("parse templates", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
		store = redisStore
		logger.Info("instruction cache backed by redis", zap.String("addr", cfg.RedisAddr))
	}

	api := billing.NewClient(cfg.BillingAPIURL, cfg.BillingAPITimeout, logger.Named("billing"))

	handler := server.NewRouter(server.Deps{
		API:                 api,
		Cache:               store,
		Policy:              policy,
		Renderer:            renderer,
		Logger:              logger,
		AllowedOrigins:      cfg.AllowedOrigins,
		CookieSecure:        cfg.CookieSecure,
		TrustProxy:          cfg.TrustProxy,
		InstructionCacheTTL: cfg.InstructionCacheTTL,
		SignInRatePerMin:    cfg.SignInRatePerMin,
		SignInBurst:         cfg.SignInBurst,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := server.Run(ctx, srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
