package di

import (
	"context"
	"fmt"
	"time"

	"SignalGate/internal/domain/repository"
	"SignalGate/internal/handler/api"
	mid "SignalGate/internal/middleware"
	internalrepo "SignalGate/internal/repository"
	icache "SignalGate/internal/service/cache"
	"SignalGate/internal/service/cooldown"
	"SignalGate/internal/service/feed"
	"SignalGate/internal/service/ratelimit"
	"SignalGate/internal/services/filters"
	"SignalGate/internal/services/monitor"
	"SignalGate/internal/services/providers"
	"SignalGate/internal/usecase"
	pkgch "SignalGate/pkg/clickhouse"
	"SignalGate/pkg/config"
	xhttp "SignalGate/pkg/http"
	pkgkafka "SignalGate/pkg/kafka"
	applogger "SignalGate/pkg/logger"
	"SignalGate/pkg/metrics"
	"SignalGate/pkg/server"
)

// Cooldowns bundles the two admission trackers so both the pipeline and
// the reset endpoint see the same instances.
type Cooldowns struct {
	Heuristic *cooldown.Tracker
	Micro     *cooldown.Tracker
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".admitted_signals (" +
			"ts DateTime, symbol String, action String, confidence Float64, " +
			"timeframe String, volume Float64, liquidity Float64, rsi Float64, " +
			"price_target Float64, stop_loss Float64, token_address String" +
			") ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideSignalStorage creates ClickHouse storage repository.
func ProvideSignalStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".admitted_signals")
}

// ProvideSignalPublisher creates Kafka publisher repository.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertPublisher creates the alert transport for the monitor.
func ProvideAlertPublisher(producer *pkgkafka.Producer) *internalrepo.KafkaAlertPublisher {
	return internalrepo.NewKafkaAlertPublisher(producer)
}

// ProvideFeedStream creates the signal feed WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.SignalStream {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.URL,
		cfg.Feed.Channels,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideRateLimiter creates the client-facing rate limiter.
func ProvideRateLimiter(cfg *config.Config, log *applogger.Logger) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit, log)
}

// ProvideProviderSet creates the external data provider clients with caching.
func ProvideProviderSet(cfg *config.Config, limiter *ratelimit.Limiter) *providers.Set {
	set := providers.NewSet(cfg.Providers, limiter)
	var cache icache.BytesCache
	if cfg.Providers.Redis.Enabled {
		cache = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Providers.Redis.Addr,
			Password: cfg.Providers.Redis.Password,
			DB:       cfg.Providers.Redis.DB,
		})
	} else {
		cache = icache.NewTTLCache()
	}
	return providers.WithCache(set, cache, cfg.Providers.CacheTTL)
}

// ProvideCooldowns creates the admission trackers shared by pipeline and API.
func ProvideCooldowns(cfg *config.Config) *Cooldowns {
	h := cfg.Filters.Heuristic
	m := cfg.Filters.Micro
	return &Cooldowns{
		Heuristic: cooldown.New(time.Duration(h.CooldownSeconds)*time.Second, h.MaxSignalsPerSymbol, h.SweepAge),
		Micro:     cooldown.New(time.Duration(m.CooldownSeconds)*time.Second, 0, h.SweepAge),
	}
}

// ProvideOrchestrator assembles the staged admission pipeline in its fixed order.
func ProvideOrchestrator(
	cfg *config.Config,
	cds *Cooldowns,
	set *providers.Set,
	log *applogger.Logger,
	m repository.Metrics,
) *filters.Orchestrator {
	stages := []filters.Stage{
		filters.NewInstantGate(cfg.Filters.Instant),
		filters.NewHeuristicFilter(cfg.Filters.Heuristic, cds.Heuristic, set.Holders, set.Txs, set.Locks, set.Ages, cfg.Providers.Timeout, log, m),
	}
	if cfg.Filters.Sniper.Enabled {
		stages = append(stages, filters.NewSniperGate(cfg.Filters.Sniper, set.Honeypot, set.Social, cfg.Providers.Timeout, log))
	}
	stages = append(stages, filters.NewMicroTimeframeGate(cfg.Filters.Micro, cds.Micro))
	return filters.NewOrchestrator(stages, cfg.Cycle.LatencyBudget, log, m)
}

// ProvideMonitor creates the rejection-rate health monitor.
func ProvideMonitor(cfg *config.Config, log *applogger.Logger, alerts *internalrepo.KafkaAlertPublisher) *monitor.HealthMonitor {
	return monitor.New(cfg.Monitor, cfg.Environment, log, alerts, cfg.Kafka.AlertsTopic)
}

// ProvideSignalProcessor creates the admitted-signal router.
func ProvideSignalProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SignalProcessor {
	return usecase.NewSignalProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideSignalCollector creates the ingest-evaluate loop.
func ProvideSignalCollector(
	stream repository.SignalStream,
	orch *filters.Orchestrator,
	proc *usecase.SignalProcessor,
	mon *monitor.HealthMonitor,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
	cds *Cooldowns,
) *usecase.SignalCollector {
	collector := mid.NewBatchCollector(m, mid.WithBufferSize(2*cfg.Cycle.MaxBatch))
	return usecase.NewSignalCollector(
		stream, collector, orch, proc, mon, m, log,
		cfg.Cycle.Interval, cfg.Cycle.MaxBatch,
		cds.Heuristic, cds.Micro,
	)
}

// ProvideHTTPHandler creates the filters API handler.
func ProvideHTTPHandler(
	log *applogger.Logger,
	orch *filters.Orchestrator,
	limiter *ratelimit.Limiter,
	mon *monitor.HealthMonitor,
	collector *usecase.SignalCollector,
	cds *Cooldowns,
) xhttp.Handler {
	return api.NewFiltersEchoHandler(log, orch, limiter, mon, collector, cds.Heuristic, cds.Micro)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.SignalCollector,
	chClient *pkgch.Client,
	log *applogger.Logger,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, collector, chClient, log)
	app.SetHTTPHandler(handler)
	return app
}
