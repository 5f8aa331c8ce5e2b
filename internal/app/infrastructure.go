package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/config"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/observability"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// Infrastructure bundles the process-wide resources: the credential store,
// the logger and the telemetry pipeline.
type Infrastructure interface {
	Store() store.Store
	Logger() *zap.Logger
	Metrics() *observability.Metrics
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	store          store.Store
	logger         *zap.Logger
	metrics        *observability.Metrics
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	redis, err := store.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.store = redis

	meterProvider, metricsHandler, err := observability.InitTelemetry()
	if err != nil {
		_ = i.store.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	metrics, err := observability.NewMetrics(meterProvider)
	if err != nil {
		_ = i.store.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	i.metrics = metrics

	return i, nil
}

func (i *infrastructure) Store() store.Store {
	return i.store
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) Metrics() *observability.Metrics {
	return i.metrics
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 3)

	go func() { errs <- i.store.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs)
}
