// Command apiserver runs the intake JSON API.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/orderflow/intake/internal/application/insights"
	"github.com/orderflow/intake/internal/application/intake"
	"github.com/orderflow/intake/internal/config"
	"github.com/orderflow/intake/internal/domain/catalog"
	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/extraction/delivery"
	"github.com/orderflow/intake/internal/extraction/notes"
	"github.com/orderflow/intake/internal/extraction/productline"
	cachingredis "github.com/orderflow/intake/internal/infrastructure/cache/redis"
	"github.com/orderflow/intake/internal/infrastructure/messaging/kafka"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/prometheus"
	"github.com/orderflow/intake/internal/infrastructure/storage/memory"
	"github.com/orderflow/intake/internal/infrastructure/storage/postgres"
	httpiface "github.com/orderflow/intake/internal/interfaces/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		panic(err)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		config.Watch(*configPath, func(updated *config.Config) {
			logger.Info("configuration file changed; restart to apply",
				logging.String("path", *configPath),
				logging.String("log_level", updated.Log.Level))
		})
	}

	// The catalog is loaded once at startup and shared read-only by every
	// concurrent request; a broken catalog is fatal.
	index, err := catalog.Load(cfg.Catalog.Path, nil, cfg.Intake.CatalogSimilarity)
	if err != nil {
		logger.Fatal("catalog load failed", logging.String("path", cfg.Catalog.Path), logging.Err(err))
	}
	logger.Info("catalog loaded", logging.String("path", cfg.Catalog.Path), logging.Int("products", index.Len()))

	repo, cleanup := buildRepository(ctx, cfg, logger)
	defer cleanup()

	var events intake.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers}, logger)
		if err != nil {
			logger.Fatal("kafka producer init failed", logging.Err(err))
		}
		defer producer.Close()
		events = producer
	}

	metrics := prometheus.NewMetrics()

	assembler := intake.NewAssembler(
		productline.NewExtractor(index, nil, cfg.Intake.CandidateSimilarity),
		delivery.NewExtractor(),
		notes.NewExtractor(),
		intake.NewValidator(index, cfg.Intake.SuggestionCount, cfg.Intake.SuggestionSimilarity),
		cfg.Intake.KeepConfidence,
	)
	service := intake.NewService(assembler, repo, events, metrics, logger)

	aggregator := insights.NewAggregator()
	if err := aggregator.Rehydrate(ctx, repo); err != nil {
		logger.Warn("insights rehydration failed; reports start empty", logging.Err(err))
	}

	handler := httpiface.NewHandler(service, aggregator, logger)

	router := httpiface.NewRouter(handler, logger, cfg.Server.Mode, metrics.Handler())
	server := httpiface.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", logging.Err(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logging.Err(err))
		}
	}
}

// buildRepository selects the order store: PostgreSQL when enabled (with an
// optional Redis read-through cache), otherwise in-memory.
func buildRepository(ctx context.Context, cfg *config.Config, logger logging.Logger) (order.Repository, func()) {
	if !cfg.Database.Enabled {
		logger.Info("using in-memory order store")
		return memory.NewOrderRepository(), func() {}
	}

	if err := postgres.RunMigrations(cfg.Database); err != nil {
		logger.Fatal("migrations failed", logging.Err(err))
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("postgres connect failed", logging.Err(err))
	}

	var repo order.Repository = postgres.NewOrderRepository(pool)
	cleanup := func() { pool.Close() }

	if cfg.Redis.Enabled {
		client, err := cachingredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("redis connect failed", logging.Err(err))
		}
		repo = cachingredis.NewOrderCache(repo, client, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL, logger)
		poolClose := cleanup
		cleanup = func() {
			_ = client.Close()
			poolClose()
		}
	}
	return repo, cleanup
}
