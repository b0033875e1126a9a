package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wordsession/internal/api"
	"github.com/mcoot/wordsession/internal/api/middleware"
	"github.com/mcoot/wordsession/internal/factory"
	redisstorage "github.com/mcoot/wordsession/internal/storage/redis"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	idleTTL := durationEnv(logger, "SESSION_IDLE_TTL", 0)
	cfg := factory.Config{
		Logger:         logger,
		StorageType:    os.Getenv("STORAGE_TYPE"),
		PubSubType:     os.Getenv("PUBSUB_TYPE"),
		DictionaryPath: os.Getenv("DICTIONARY_PATH"),
		DictionaryURL:  os.Getenv("DICTIONARY_URL"),
		NotifyURL:      os.Getenv("NOTIFY_URL"),
		SessionIdleTTL: idleTTL,
		Registerer:     registry,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if url := os.Getenv("REDIS_URL"); url != "" {
			redisCfg.URL = url
		}
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(), logger)
	defer limiter.Stop()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		Dictionary:     app.DictionaryService,
		HubManager:     app.HubManager,
		RateLimiter:    limiter,
		Gatherer:       registry,
	})

	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return err
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		app.CleanupJob.Start(gctx, durationEnv(logger, "CLEANUP_INTERVAL", 10*time.Minute))
		return nil
	})
	if app.Subscriber != nil {
		g.Go(func() error { return app.Subscriber.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}

func durationEnv(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("ignoring invalid duration", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
