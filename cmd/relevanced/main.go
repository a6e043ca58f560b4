package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/meridianhealth/recordsearch/internal/engine"
	"github.com/meridianhealth/recordsearch/internal/ingest/consumer"
	"github.com/meridianhealth/recordsearch/internal/search"
	"github.com/meridianhealth/recordsearch/internal/search/cache"
	"github.com/meridianhealth/recordsearch/internal/search/handler"
	"github.com/meridianhealth/recordsearch/internal/store"
	"github.com/meridianhealth/recordsearch/pkg/config"
	"github.com/meridianhealth/recordsearch/pkg/health"
	pkgkafka "github.com/meridianhealth/recordsearch/pkg/kafka"
	"github.com/meridianhealth/recordsearch/pkg/logger"
	"github.com/meridianhealth/recordsearch/pkg/metrics"
	"github.com/meridianhealth/recordsearch/pkg/middleware"
	"github.com/meridianhealth/recordsearch/pkg/postgres"
	pkgredis "github.com/meridianhealth/recordsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting relevance service", "port", cfg.Server.Port)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	eng := engine.New()
	svc := search.New(eng, m, cfg.Search)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var pgClient *postgres.Client
	if cfg.Store.WarmOnStart {
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable, cannot warm index", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()

		loader := store.New(pgClient, cfg.Store.Table)
		loaded, err := loader.WarmIndex(ctx, svc)
		if err != nil {
			slog.Error("index warm-up failed", "error", err, "records_loaded", loaded)
			os.Exit(1)
		}
		slog.Info("index warmed from record store", "records_loaded", loaded)
	}

	recordConsumer := consumer.New(pkgkafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.RecordEvents,
		consumer.HandleMessage(svc, queryCache),
	))
	go func() {
		if err := recordConsumer.Start(ctx); err != nil {
			slog.Error("record consumer stopped", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("relevance_engine", func(ctx context.Context) health.ComponentHealth {
		if eng.Healthy() {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", eng.DocumentCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "document/vector stores diverged"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(svc, queryCache, m)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("relevance service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("relevance service stopped")
}
