package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type MetricsCollector struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationAmount   *prometheus.HistogramVec
	accountBalance    *prometheus.GaugeVec
	logger            *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &MetricsCollector{
		registry: registry,
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "account_operations_total",
			Help: "Total number of account operations by outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_operation_duration_seconds",
			Help:    "Time taken to apply an account operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		operationAmount: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_operation_amount",
			Help:    "Distribution of requested operation amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}, []string{"operation"}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Current account balance",
		}, []string{"account_id"}),
		logger: logger,
	}
}

func (m *MetricsCollector) RecordOperation(operation string, duration time.Duration, amount float64, success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}

	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())

	// Rejected amounts may be NaN, infinite or non-positive.
	if success {
		m.operationAmount.WithLabelValues(operation).Observe(amount)
	}
}

func (m *MetricsCollector) UpdateAccountBalance(accountID string, balance float64) {
	m.accountBalance.WithLabelValues(accountID).Set(balance)
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer binds addr before serving in the background, so a bind
// failure is returned to the caller.
func (m *MetricsCollector) StartMetricsServer(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics server on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", server.Addr))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server, nil
}

func (m *MetricsCollector) Shutdown(ctx context.Context, server *http.Server) error {
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
