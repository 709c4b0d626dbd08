package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/storage/cache"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second
	// writeTimeoutSlack оставляет middleware.Timeout время записать свой ответ.
	writeTimeoutSlack = 5 * time.Second
)

// application хранит собранный граф зависимостей до запуска серверов.
type application struct {
	handler http.Handler
	health  *healthcheck.Handler

	deps     *runtimeDependencies
	producer *kafka.Producer
	redis    *redis.Client
}

// buildApplication собирает хранилище, кэш, события, сервис и роутер.
func buildApplication(ctx context.Context, cfg Config, logger *log.Entry) (*application, error) {
	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		deps:   deps,
		health: healthcheck.NewHandler(version.Current()),
	}
	app.health.RegisterChecker("storage", deps.storageChecker)

	catalogMetrics := metrics.NewCatalogMetrics()

	products := deps.products
	productCache, redisClient, err := initProductCache(ctx, cfg.RedisAddr, cfg.CacheTTL, logger)
	switch {
	case err != nil:
		logger.WithError(err).Warn("product cache disabled")
	case productCache != nil:
		app.redis = redisClient
		products = cache.NewCachedProductRepository(products, productCache, catalogMetrics, logger)
		app.health.RegisterChecker("redis", healthcheck.NewFuncChecker("redis", productCache.Ping))
	}

	var events domain.EventPublisher
	if producer, err := initKafkaProducer(cfg.KafkaBrokers, logger); err == nil && producer != nil {
		app.producer = producer
		events = kafka.NewCatalogPublisher(producer, cfg.KafkaTopic, catalogMetrics)
	}

	service := catalog.New(catalog.Dependencies{
		Products:   products,
		Categories: deps.categories,
		Carts:      deps.carts,
		Users:      deps.users,
		Events:     events,
		Metrics:    catalogMetrics,
		Logger:     logger.WithField("layer", "service"),
	})

	app.handler = httpapi.NewRouter(httpapi.RouterConfig{
		Service:        service,
		Logger:         logger.WithField("layer", "http"),
		Metrics:        metrics.NewHTTPMetrics(),
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: splitList(cfg.CORSOrigins),
	})
	return app, nil
}

// close освобождает внешние ресурсы в обратном порядке.
func (a *application) close(logger *log.Entry) {
	closeKafka(a.producer, logger)
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if err := a.deps.close(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// Run запускает HTTP API и сервер метрик и блокируется до отмены ctx
// или ошибки API-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(logger)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, app.health)
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultConfig().RequestTimeout
	}
	apiSrv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      requestTimeout + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newAdminMux собирает служебные маршруты: метрики и health-пробы.
func newAdminMux(health *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	return mux
}

// startMetricsServer поднимает служебный HTTP: /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, health *healthcheck.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: newAdminMux(health), ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
