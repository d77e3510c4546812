package postgresengine

import (
	"github.com/fitgrid/platform/eventstore"
)

const (
	appendDurationMetric  = "eventstore_append_duration_seconds"
	conflictCounterMetric = "eventstore_concurrency_conflicts_total"
	metricLabelDomain     = "domain"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Event counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithMetricsCollector sets the metrics collector for the EventStore.
// Append durations and concurrency conflicts are recorded, labeled by domain.
func WithMetricsCollector(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metrics = collector
		return nil
	}
}
