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

	"github.com/burgerboard/api/internal/config"
	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/events"
	"github.com/burgerboard/api/internal/idempotency"
	"github.com/burgerboard/api/internal/logger"
	mw "github.com/burgerboard/api/internal/middleware"
	"github.com/burgerboard/api/internal/router"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/burgerboard/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("unable to ping database", zap.Error(err))
	}
	log.Info("connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run(ctx)

	fanout := events.NewFanout().Add("websocket", events.NewHubPublisher(hub))
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("close kafka writer", zap.Error(err))
			}
		}()
		fanout.Add("kafka", kp)
		log.Info("kafka change feed enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	deps := router.Deps{
		Notifier: webhook.NewDispatcher(webhook.Config{
			KitchenURL: cfg.KitchenWebhookURL,
			CashierURL: cfg.CashierWebhookURL,
			Timeout:    cfg.WebhookTimeout,
		}),
		Publisher: fanout,
		Limiter:   mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	go deps.Limiter.Cleanup(ctx)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The guard fails open, so a missing Redis only loses duplicate detection.
			log.Warn("redis unreachable, duplicate intake detection degraded", zap.Error(err))
		}
		deps.Guard = idempotency.NewGuard(rdb, cfg.IdempotencyTTL)
	}

	if cfg.KitchenWebhookURL == "" || cfg.CashierWebhookURL == "" {
		log.Warn("printer webhook URL missing, tickets for that destination will be reported as failed")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, queries, pool, hub, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("timezone", cfg.Location.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
