package di

import (
	"fmt"
	"strings"

	domrepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/handler/api"
	internalrepo "CoinSight/internal/repository"
	"CoinSight/internal/service/binance"
	"CoinSight/internal/service/coingecko"
	"CoinSight/internal/services/forecast"
	"CoinSight/internal/usecase"
	"CoinSight/pkg/cache"
	pkgch "CoinSight/pkg/clickhouse"
	"CoinSight/pkg/config"
	xhttp "CoinSight/pkg/http"
	pkgkafka "CoinSight/pkg/kafka"
	applogger "CoinSight/pkg/logger"
	"CoinSight/pkg/metrics"
	"CoinSight/pkg/queue"
	"CoinSight/pkg/server"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProvideLogCollector creates the in-memory log ring for diagnostics.
func ProvideLogCollector() *applogger.Collector {
	return applogger.NewCollector(256)
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config, collector *applogger.Collector) *applogger.Logger {
	return applogger.New(
		applogger.WithLevel(applogger.Level(cfg.Logging.Level)),
		applogger.WithPretty(cfg.Logging.Pretty),
		applogger.WithCollector(collector),
	)
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates the time-series database client.
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
	return client, nil
}

// ProvidePriceStore creates the ClickHouse price store and its schema.
func ProvidePriceStore(client *pkgch.Client, lgr *applogger.Logger) (domrepo.PriceStore, error) {
	return internalrepo.NewCHPriceStore(client, lgr)
}

// ProvidePublisher creates the Kafka publisher when the ingest backend is
// kafka; otherwise no publisher is needed.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
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
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideConsumer creates the Kafka consumer for the ingest topic when the
// backend is kafka.
func ProvideConsumer(cfg *config.Config, lgr *applogger.Logger, store domrepo.PriceStore, m domrepo.Metrics) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(lgr),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithHook(pkgkafka.NoopHook{})
	consumer.RegisterHandler(usecase.NewKafkaPricesHandler(cfg.Kafka.Topic, store, m))
	return consumer, nil
}

// ProvideWarehouse opens the relational store for derived data.
func ProvideWarehouse(cfg *config.Config) (*gorm.DB, error) {
	return internalrepo.OpenWarehouse(cfg.Warehouse.Driver, cfg.Warehouse.DSN)
}

func ProvideIndicatorStore(db *gorm.DB) domrepo.IndicatorStore {
	return internalrepo.NewGormIndicatorStore(db)
}

func ProvideFeatureStore(db *gorm.DB) domrepo.FeatureStore {
	return internalrepo.NewGormFeatureStore(db)
}

func ProvideModelStore(db *gorm.DB) domrepo.ModelStore {
	return internalrepo.NewGormModelStore(db)
}

func ProvidePredictionStore(db *gorm.DB) domrepo.PredictionStore {
	return internalrepo.NewGormPredictionStore(db)
}

// ProvideCacheService creates the cache backend. Redis when an address is
// configured, in-process otherwise. Disabled caching yields nil and every
// consumer treats that as cache-off.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideQueue creates the Redis-backed job queue when enabled.
func ProvideQueue(cfg *config.Config, lgr *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisQueue(lgr, &queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryMax,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
}

// ProvideQueueService exposes the queue as its publish interface, keeping a
// disabled queue a true nil.
func ProvideQueueService(q *queue.RedisQueue) queue.Service {
	if q == nil {
		return nil
	}
	return q
}

// ProvidePriceSource creates the market-data API client.
func ProvidePriceSource(cfg *config.Config, lgr *applogger.Logger) domrepo.PriceSource {
	return coingecko.New(cfg.CoinGecko.BaseURL, lgr,
		coingecko.WithAPIKey(cfg.CoinGecko.APIKey),
		coingecko.WithVSCurrency(cfg.CoinGecko.VSCurrency),
		coingecko.WithHTTPTimeout(cfg.CoinGecko.Timeout),
	)
}

// ProvideTickerStream creates the realtime stream when enabled. Symbols and
// instruments pair up positionally.
func ProvideTickerStream(cfg *config.Config, lgr *applogger.Logger) domrepo.TickerStream {
	if !cfg.Binance.Enabled || len(cfg.Binance.Symbols) == 0 {
		return nil
	}
	symbolMap := make(map[string]string, len(cfg.Binance.Symbols))
	for i, sym := range cfg.Binance.Symbols {
		if i >= len(cfg.CoinGecko.Instruments) {
			break
		}
		symbolMap[strings.ToLower(sym)] = cfg.CoinGecko.Instruments[i]
	}
	return binance.New(cfg.Binance.WebSocketURL, symbolMap, cfg.Binance.ReconnectDelay, cfg.Binance.PingInterval, lgr)
}

func ProvidePriceProcessor(pub domrepo.Publisher, store domrepo.PriceStore, m domrepo.Metrics, cfg *config.Config) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(pub, store, m, cfg.Ingest.Backend)
}

func ProvideHistoryCollector(source domrepo.PriceSource, proc *usecase.PriceProcessor, m domrepo.Metrics, lgr *applogger.Logger, cfg *config.Config) *usecase.HistoryCollector {
	return usecase.NewHistoryCollector(source, proc, m, lgr,
		cfg.CoinGecko.Instruments, cfg.CoinGecko.HistoryDays, cfg.CoinGecko.PollInterval)
}

// ProvideTickerCollector wraps the stream with the ingest pipeline.
func ProvideTickerCollector(stream domrepo.TickerStream, proc *usecase.PriceProcessor, m domrepo.Metrics) *usecase.TickerCollector {
	if stream == nil {
		return nil
	}
	pipe := middlewarePipeline(proc, m)
	return usecase.NewTickerCollector(stream, proc, m, pipe)
}

func ProvideDeriveUseCase(prices domrepo.PriceStore, ind domrepo.IndicatorStore, feat domrepo.FeatureStore, c cache.Service, m domrepo.Metrics, lgr *applogger.Logger) *usecase.DeriveUseCase {
	return usecase.NewDeriveUseCase(prices, ind, feat, c, m, lgr)
}

// ProvideTrainerConfig maps training settings onto the trainer policy.
func ProvideTrainerConfig(cfg *config.Config) forecast.TrainerConfig {
	tc := forecast.DefaultTrainerConfig()
	tc.MinSamples = cfg.Training.MinSamples
	tc.TestFraction = cfg.Training.TestFraction
	tc.CVFolds = cfg.Training.CVFolds
	tc.Seed = cfg.Training.Seed
	return tc
}

func ProvideForecastUseCase(
	feat domrepo.FeatureStore,
	prices domrepo.PriceStore,
	ms domrepo.ModelStore,
	ps domrepo.PredictionStore,
	c cache.Service,
	m domrepo.Metrics,
	lgr *applogger.Logger,
	tc forecast.TrainerConfig,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(feat, prices, ms, ps, c, m, lgr, tc)
}

func ProvideQueryUseCase(
	prices domrepo.PriceStore,
	ind domrepo.IndicatorStore,
	feat domrepo.FeatureStore,
	ps domrepo.PredictionStore,
	c cache.Service,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.QueryUseCase {
	ttls := usecase.CacheTTLs{
		Prices:      cfg.Cache.TTL.Prices,
		Indicators:  cfg.Cache.TTL.Indicators,
		Features:    cfg.Cache.TTL.Features,
		Predictions: cfg.Cache.TTL.Predictions,
	}
	return usecase.NewQueryUseCase(prices, ind, feat, ps, c, ttls, lgr)
}

// ProvideScheduler creates the periodic retrain scheduler when the queue is
// available and a retrain interval is configured.
func ProvideScheduler(q queue.Service, c cache.Service, lgr *applogger.Logger, cfg *config.Config) *usecase.Scheduler {
	if q == nil || cfg.Training.RetrainEvery <= 0 {
		return nil
	}
	return usecase.NewScheduler(q, c, lgr, cfg.CoinGecko.Instruments, cfg.Training.RetrainEvery)
}

// ProvideJobs lists every queue job handler.
func ProvideJobs(collector *usecase.HistoryCollector, derive *usecase.DeriveUseCase, forecasts *usecase.ForecastUseCase, lgr *applogger.Logger) []queue.Job {
	return []queue.Job{
		usecase.NewCollectHistoryJob(collector, derive, lgr),
		usecase.NewRetrainJob(forecasts, lgr),
	}
}

// ProvideRouter assembles the API handlers.
func ProvideRouter(
	lgr *applogger.Logger,
	collector *applogger.Collector,
	queries *usecase.QueryUseCase,
	hist *usecase.HistoryCollector,
	derive *usecase.DeriveUseCase,
	forecasts *usecase.ForecastUseCase,
	q queue.Service,
	prices domrepo.PriceStore,
	ticker *usecase.TickerCollector,
) *api.Router {
	pipeline := api.NewPipelineHandler(lgr, queries, hist, derive, forecasts, q)
	var stream api.StreamStatus
	if ticker != nil {
		stream = ticker
	}
	system := api.NewSystemHandler(lgr, collector, prices, stream)
	return api.NewRouter(pipeline, system)
}

// ProvideHTTPServer creates the API server.
func ProvideHTTPServer(cfg *config.Config, router *api.Router, lgr *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(lgr),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(router, opts...)
}

// ProvideApp wires every long-running component into the application runner.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	httpServer *xhttp.Server,
	hist *usecase.HistoryCollector,
	ticker *usecase.TickerCollector,
	consumer *pkgkafka.Consumer,
	q *queue.RedisQueue,
	jobs []queue.Job,
	sched *usecase.Scheduler,
) *server.App {
	app := server.NewApp("coinsight", lgr,
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout))

	if q != nil {
		q.RegisterJobs(jobs)
		app.Register(&queueComponent{q: q})
	}
	if consumer != nil {
		app.Register(&consumerComponent{c: consumer})
	}
	app.Register(&historyComponent{c: hist})
	if ticker != nil {
		app.Register(&tickerComponent{c: ticker})
	}
	if sched != nil {
		app.Register(&schedulerComponent{s: sched})
	}
	app.Register(&httpComponent{s: httpServer})

	return app
}

// Toolbox bundles the usecases driven by one-shot pipeline commands.
type Toolbox struct {
	History   *usecase.HistoryCollector
	Derive    *usecase.DeriveUseCase
	Forecasts *usecase.ForecastUseCase
	Logger    *applogger.Logger
}

// ProvideToolbox assembles the one-shot command toolbox.
func ProvideToolbox(
	hist *usecase.HistoryCollector,
	derive *usecase.DeriveUseCase,
	forecasts *usecase.ForecastUseCase,
	lgr *applogger.Logger,
) *Toolbox {
	return &Toolbox{History: hist, Derive: derive, Forecasts: forecasts, Logger: lgr}
}
