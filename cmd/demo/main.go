package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bank_account/internal/config"
	"bank_account/internal/domain"
	"bank_account/internal/processor"
	"bank_account/internal/telemetry"
	"bank_account/pkg/crypto"
	"bank_account/pkg/metrics"
)

const appVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg, os.Stderr)
	if err := run(context.Background(), cfg, logger, os.Stdout); err != nil {
		logger.Error("Demo failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.LogFormat == config.FormatText {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", cfg.ServiceName))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    appVersion,
		CollectorEndpoint: cfg.OTelEndpoint,
	}, logger)
	if err != nil {
		return err
	}

	metricsCollector := metrics.NewMetricsCollector(logger)
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer, err = metricsCollector.StartMetricsServer(cfg.MetricsAddr)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return err
		}
	}

	var signer *crypto.Signer
	if cfg.SigningKey != "" {
		signer = crypto.NewSigner(cfg.SigningKey, logger)
	}

	proc := processor.NewTransactionProcessor(metricsCollector, signer, logger,
		processor.WithTracerProvider(tel.TracerProvider))

	defer shutdown(logger, tel, metricsCollector, metricsServer)

	primary, err := domain.NewAccount("0001", "Alice", 500)
	if err != nil {
		return err
	}
	secondary, err := domain.NewAccount("0002", "Bob", 250)
	if err != nil {
		return err
	}

	if _, err := proc.Deposit(ctx, primary, 200); err != nil {
		return err
	}
	if _, err := proc.Withdraw(ctx, primary, 100); err != nil {
		return err
	}
	if _, err := proc.Transfer(ctx, primary, secondary, 150); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s balance: $%g\n", primary.Holder(), primary.Balance())
	fmt.Fprintf(out, "%s balance: $%g\n", secondary.Holder(), secondary.Balance())
	return nil
}

func shutdown(
	logger *slog.Logger,
	tel *telemetry.Telemetry,
	metricsCollector *metrics.MetricsCollector,
	metricsServer *http.Server,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metricsCollector.Shutdown(ctx, metricsServer); err != nil {
		logger.Error("Metrics collector shutdown failed", slog.String("error", err.Error()))
	}
	if err := tel.Shutdown(ctx); err != nil {
		logger.Error("Telemetry shutdown failed", slog.String("error", err.Error()))
	}
}
