package di

import (
	"fmt"
	"time"

	"AstroPull/internal/domain/repository"
	"AstroPull/internal/handler/api"
	internalrepo "AstroPull/internal/repository"
	"AstroPull/internal/service/coingecko"
	"AstroPull/internal/service/hyperliquid"
	"AstroPull/internal/service/ratelimit"
	"AstroPull/internal/services/enrich"
	"AstroPull/internal/usecase"
	"AstroPull/pkg/cache"
	"AstroPull/pkg/config"
	xhttp "AstroPull/pkg/http"
	pkgkafka "AstroPull/pkg/kafka"
	applogger "AstroPull/pkg/logger"
	"AstroPull/pkg/metrics"
	"AstroPull/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "astropull",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// LogShipping marks that log collection has been attached when enabled.
type LogShipping struct{ Enabled bool }

// ProvideLogShipping attaches the Kafka log collector to l when configured.
func ProvideLogShipping(cfg *config.Config, l *applogger.Logger, producer *pkgkafka.Producer) LogShipping {
	if !cfg.Log.Collector.Enabled || producer == nil {
		return LogShipping{}
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Log.Collector.Interval,
		CountThreshold: cfg.Log.Collector.Threshold,
		Topic:          cfg.Log.Collector.Topic,
		Publisher:      producer,
		CollectWarn:    true,
	})
	return LogShipping{Enabled: true}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache creates the price cache: in-memory, or Redis behind a memory tier.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.CoinGecko.CacheSize),
			cache.WithMemoryTTL(cfg.CoinGecko.CacheTTL),
		), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle, cfg.Redis.PoolWait),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("price cache backed by redis", applogger.String("addr", cfg.Redis.Addr))
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.CoinGecko.CacheSize),
		cache.WithLayeredMemoryTTL(time.Hour),
	), nil
}

// ProvideFillSource picks the Hyperliquid transport.
func ProvideFillSource(cfg *config.Config) repository.FillSource {
	if cfg.Hyperliquid.Transport == "websocket" {
		return hyperliquid.NewStream(cfg.Hyperliquid.WSURL, cfg.Hyperliquid.Timeout)
	}
	return hyperliquid.New(cfg.Hyperliquid.InfoURL, cfg.Hyperliquid.Timeout)
}

// ProvidePriceSource creates the CoinGecko client.
func ProvidePriceSource(cfg *config.Config) repository.PriceSource {
	return coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.Timeout)
}

// ProvideEventPublisher publishes session events to Kafka when enabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if !cfg.Events.Enabled || producer == nil {
		return internalrepo.NewNoopEventPublisher()
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Events.Topic)
}

// ProvidePipeline creates the enrichment pipeline.
func ProvidePipeline() *enrich.Pipeline {
	return enrich.New()
}

// ProvideDashboard creates the dashboard use case.
func ProvideDashboard(
	cfg *config.Config,
	source repository.FillSource,
	pipeline *enrich.Pipeline,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Dashboard {
	return usecase.NewDashboard(source, pipeline, pub, m, l, usecase.DashboardConfig{
		Address:      cfg.Account.Address,
		FetchTimeout: 2 * cfg.Hyperliquid.Timeout,
		AllLabels:    cfg.Pivot.AllLabels,
	})
}

// ProvideSessionStore creates the in-memory session store.
func ProvideSessionStore(cfg *config.Config) *usecase.SessionStore {
	return usecase.NewSessionStore(cfg.Sessions.MaxEntries, cfg.Sessions.IdleTTL)
}

// ProvidePriceLookup creates the cached price lookup.
func ProvidePriceLookup(cfg *config.Config, src repository.PriceSource, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.PriceLookup {
	return usecase.NewPriceLookup(src, c, cfg.CoinGecko.CacheTTL, m, l)
}

// ProvideRateLimiter creates the per-client limiter for fetch actions, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHandlers builds the HTTP handlers.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	dash *usecase.Dashboard,
	sessions *usecase.SessionStore,
	limiter *ratelimit.Limiter,
	lookup *usecase.PriceLookup,
) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewDashboardHandler(l, dash, sessions, limiter, cfg.Sessions.CookieName, cfg.Pivot.AllLabels),
		api.NewPriceHandler(l, lookup),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	return xhttp.NewServer(l, handlers,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
	)
}

// ProvideApp creates the application and registers what it must close.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	_ LogShipping,
	producer *pkgkafka.Producer,
	c cache.Service,
	source repository.FillSource,
	pub repository.EventPublisher,
) *server.App {
	app := server.New(cfg, l, srv)
	if producer != nil {
		app.OnShutdown("kafka producer", producer)
	}
	app.OnShutdown("price cache", c)
	app.OnShutdown("fill source", source)
	app.OnShutdown("event publisher", pub)
	return app
}

// Toolkit bundles the use cases the one-shot CLI commands need.
type Toolkit struct {
	Log       *applogger.Logger
	Dashboard *usecase.Dashboard
	Prices    *usecase.PriceLookup

	closers []interface{ Close() error }
}

// Close releases the toolkit's clients.
func (t *Toolkit) Close() error {
	var first error
	for _, c := range t.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ProvideToolkit creates the CLI toolkit.
func ProvideToolkit(
	l *applogger.Logger,
	dash *usecase.Dashboard,
	lookup *usecase.PriceLookup,
	producer *pkgkafka.Producer,
	c cache.Service,
	source repository.FillSource,
) *Toolkit {
	t := &Toolkit{Log: l, Dashboard: dash, Prices: lookup}
	t.closers = append(t.closers, source, c)
	if producer != nil {
		t.closers = append(t.closers, producer)
	}
	return t
}
