package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fraudbusters/internal/amqp"
	"fraudbusters/internal/backend"
	"fraudbusters/internal/cli"
	"fraudbusters/internal/core"
	"fraudbusters/internal/dashboard"
	apphttp "fraudbusters/internal/http"
	applog "fraudbusters/internal/log"
	"fraudbusters/internal/metrics"
)

const (
	shutdownTimeout = 30 * time.Second
	publishTimeout  = 15 * time.Second
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp)
	metrics.Init()

	logger.Info("Starting fraudbusters", applog.FieldOperation, applog.OpStartup, applog.FieldBackend, cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	// No partial dashboard: any load or aggregation failure stops the
	// process before the listener opens.
	data, err := dashboard.Build(ctx, result.Reader, result.Reader)
	if err != nil {
		applog.NewStructuredLogger(logger).LogError(ctx, "Dashboard build failed", err,
			applog.ComponentDashboard, applog.OpBuild, applog.NewFields())
		if errors.Is(err, core.ErrDataUnavailable) {
			logger.Error("Check the configured data files", applog.FieldBackend, result.Type.String())
		}
		_ = result.Close()
		os.Exit(1)
	}

	sl := applog.NewStructuredLogger(logger)
	sl.LogTableLoaded(ctx, result.Type.String(), "transactions", data.Transactions)
	sl.LogTableLoaded(ctx, result.Type.String(), "customer_history", data.CustomerHistory)

	srv := apphttp.NewServer(cfg.Addr(), data, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.AMQPURL != "" {
		go publishSnapshot(gctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, data, logger)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// publishSnapshot announces the build on the message bus. Failures are
// logged and never affect the page server.
func publishSnapshot(ctx context.Context, url, exchange, routingKey string, data *dashboard.DashboardData, logger *applog.Logger) {
	logger = logger.WithComponent(applog.ComponentAMQP)
	client := amqp.NewClient(url, exchange, routingKey)
	defer client.Close()

	fraud := data.Partition(core.Fraud)
	nonFraud := data.Partition(core.NonFraud)
	msg := amqp.NewSnapshotMessage(amqp.Snapshot{
		BuiltAt:         data.BuiltAt,
		Transactions:    data.Transactions,
		CustomerHistory: data.CustomerHistory,
		FraudCount:      fraud.Count,
		FraudValue:      fraud.Value,
		NonFraudCount:   nonFraud.Count,
		NonFraudValue:   nonFraud.Value,
	})

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := client.PublishSnapshot(ctx, msg); err != nil {
		metrics.SnapshotPublishes.WithLabelValues("failure").Inc()
		logger.Warn("Snapshot publication failed", applog.FieldError, err, applog.FieldOperation, applog.OpPublish)
		return
	}
	metrics.SnapshotPublishes.WithLabelValues("success").Inc()
	logger.Info("Snapshot published", "snapshot_id", msg.ID, "exchange", exchange, applog.FieldOperation, applog.OpPublish)
}
