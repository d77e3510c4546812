// Command platformd runs the event-sourced backend core: the Postgres event
// store, the in-process event bus with its projectors, and the relay that
// feeds committed events from the store onto the bus.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/fitgrid/platform/eventbus/memorybus"
	"github.com/fitgrid/platform/eventbus/relay"
	"github.com/fitgrid/platform/eventstore/oteladapters"
	"github.com/fitgrid/platform/eventstore/postgresengine"
	"github.com/fitgrid/platform/features/projection/progressmetrics"
	"github.com/fitgrid/platform/features/projection/schedulepreview"
	"github.com/fitgrid/platform/shared/shell/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("platformd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := config.NewPGXPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Metrics flow to whatever global MeterProvider is installed; without one
	// the otel API defaults to a no-op.
	metrics := oteladapters.NewMetricsCollector(otel.Meter("platformd"))
	storeLogger := oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())

	eventStore, err := postgresengine.NewEventStoreFromPGXPool(
		pool,
		postgresengine.WithTableName(cfg.EventTableName),
		postgresengine.WithLogger(storeLogger),
		postgresengine.WithMetricsCollector(metrics),
	)
	if err != nil {
		return err
	}

	bus := memorybus.NewEventBus(
		memorybus.WithPartitionBufferSize(int(cfg.BusPartitionBufferSize)),
		memorybus.WithMaxDeliveryAttempts(int(cfg.BusMaxDeliveryAttempts)),
		memorybus.WithRedeliveryBaseDelay(cfg.BusRedeliveryBaseDelay),
		memorybus.WithLogger(logger),
		memorybus.WithMetricsCollector(metrics),
	)
	defer bus.Close()

	analytics := progressmetrics.NewProjector(progressmetrics.WithLogger(logger))
	if err := bus.Subscribe(progressmetrics.SubscriberName, analytics, analytics.Subscriptions()...); err != nil {
		return err
	}

	scheduling := schedulepreview.NewProjector(schedulepreview.WithLogger(logger))
	if err := bus.Subscribe(schedulepreview.SubscriberName, scheduling, scheduling.Subscriptions()...); err != nil {
		return err
	}

	eventRelay, err := relay.NewRelay(
		eventStore,
		bus,
		relay.WithPollInterval(cfg.RelayPollInterval),
		relay.WithBatchSize(int(cfg.RelayBatchSize)),
		relay.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("platformd started",
		"event_table", cfg.EventTableName,
		"relay_poll_interval", cfg.RelayPollInterval.String())

	if err := eventRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("platformd shut down")

	return nil
}
