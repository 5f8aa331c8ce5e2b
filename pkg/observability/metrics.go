package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the broker's domain counters.
type Metrics struct {
	TokenExchanges metric.Int64Counter
	PlatformCalls  metric.Int64Counter
	LinkOperations metric.Int64Counter
}

// NewMetrics registers the broker's counters on the meter provider.
func NewMetrics(mp *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("luxbridge-auth")

	tokenExchanges, err := meter.Int64Counter("oauth_token_exchanges_total",
		metric.WithDescription("Authorization code exchanges, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to register token exchange counter: %w", err)
	}
	platformCalls, err := meter.Int64Counter("platform_proxy_calls_total",
		metric.WithDescription("Proxied downstream platform calls, by platform and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to register platform call counter: %w", err)
	}
	linkOps, err := meter.Int64Counter("platform_link_operations_total",
		metric.WithDescription("Platform link create/delete/validate operations"))
	if err != nil {
		return nil, fmt.Errorf("failed to register link operation counter: %w", err)
	}

	return &Metrics{
		TokenExchanges: tokenExchanges,
		PlatformCalls:  platformCalls,
		LinkOperations: linkOps,
	}, nil
}

// CountTokenExchange records one token exchange attempt.
func (m *Metrics) CountTokenExchange(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.TokenExchanges.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// CountPlatformCall records one proxied platform call.
func (m *Metrics) CountPlatformCall(ctx context.Context, platform, outcome string) {
	if m == nil {
		return
	}
	m.PlatformCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.String("outcome", outcome),
	))
}

// CountLinkOperation records one link create/delete/validate.
func (m *Metrics) CountLinkOperation(ctx context.Context, platform, op string) {
	if m == nil {
		return
	}
	m.LinkOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.String("op", op),
	))
}

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}
