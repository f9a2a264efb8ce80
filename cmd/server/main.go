package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"paddock/internal/lineup/cache"
	"paddock/internal/lineup/events"
	"paddock/internal/lineup/handler"
	lineupmetrics "paddock/internal/lineup/metrics"
	"paddock/internal/lineup/service"
	"paddock/internal/lineup/source/factory"
	"paddock/internal/platform/config"
	"paddock/internal/platform/httpserver"
	"paddock/internal/platform/kafka"
	"paddock/internal/platform/logger"
	httpmetrics "paddock/internal/platform/metrics"
	"paddock/internal/platform/redis"
	"paddock/pkg/platform/middleware/ratelimit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logOut io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, logOut)
	slog.SetDefault(log)

	src, closeSource, err := factory.Open(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("open record source: %w", err)
	}
	defer closeSource.Close()

	lineupMetrics := lineupmetrics.New()

	docCache, closeCache, err := buildCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, err := buildPublisher(ctx, cfg, log, lineupMetrics)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc, err := service.New(src,
		service.WithLogger(log),
		service.WithCache(docCache),
		service.WithEventPublisher(publisher),
		service.WithMetrics(lineupMetrics),
	)
	if err != nil {
		return err
	}

	// The server starts even if the first build fails; /graph answers 503
	// until a refresh succeeds.
	if _, err := svc.Rebuild(ctx); err != nil {
		log.WarnContext(ctx, "initial snapshot build failed", "error", err)
	}

	h := handler.New(svc, log)
	router := newRouter(routerDeps{
		handler:    h,
		status:     svc,
		adminToken: cfg.AdminToken,
		rateLimit:  cfg.RateLimit,
		limiter:    ratelimit.NewSlidingWindow(),
		metrics:    httpmetrics.New(),
		logger:     log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, log)
	})
	if cfg.RefreshInterval > 0 {
		g.Go(func() error {
			log.InfoContext(gctx, "snapshot refresher started", "interval", cfg.RefreshInterval.String())
			return svc.StartRefresher(gctx, cfg.RefreshInterval)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("paddock stopped")
	return nil
}

func buildCache(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Cache, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.InfoContext(ctx, "graph cache using memory", "ttl", cfg.CacheTTL.String())
		return cache.NewMemory(cache.WithTTL(cfg.CacheTTL)), func() {}, nil
	}

	rc, err := cache.NewRedis(client, cache.WithRedisTTL(cfg.CacheTTL), cache.WithLogger(log))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.InfoContext(ctx, "graph cache using redis", "ttl", cfg.CacheTTL.String())
	return rc, func() { _ = client.Close() }, nil
}

func buildPublisher(ctx context.Context, cfg config.Server, log *slog.Logger, m *lineupmetrics.Metrics) (events.Publisher, error) {
	client, err := kafka.New(ctx, cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return events.NewLogPublisher(log), nil
	}

	admin, err := kafka.Admin(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := events.EnsureTopic(ctx, admin, cfg.Kafka.Topic, 1, 1); err != nil {
		client.Close()
		return nil, err
	}

	pub, err := events.NewKafkaPublisher(client,
		events.WithTopic(cfg.Kafka.Topic),
		events.WithLogger(log),
		events.WithMetrics(m),
	)
	if err != nil {
		client.Close()
		return nil, err
	}
	log.InfoContext(ctx, "snapshot events publishing to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return pub, nil
}
