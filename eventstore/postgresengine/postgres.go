package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName        = "events"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgToSQLFailed            = "failed to convert insert statement to SQL"
	logMsgStreamRead             = "stream read completed"
	logMsgGlobalRead             = "global read completed"
	logMsgOutboxRead             = "outbox read completed"
	logMsgEventsMarkedPublished  = "events marked published"
	logMsgEventsAppended         = "events appended"
	logMsgConcurrencyConflict    = "concurrency conflict detected"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "eventstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrStream                = "stream"
	logAttrEventCount            = "event_count"
	logAttrDurationMS            = "duration_ms"
	logAttrExpectedEvents        = "expected_events"
	logAttrRowsAffected          = "rows_affected"
	logAttrExpectedVersion       = "expected_version"
	logActionRead                = "read"
	logActionAppend              = "append"
	logActionMarkPublished       = "mark published"
	colGlobalSequence            = "global_sequence"
	colDomain                    = "domain"
	colAggregateID               = "aggregate_id"
	colVersion                   = "version"
	colEventType                 = "event_type"
	colOccurredAt                = "occurred_at"
	colPayload                   = "payload"
	colMetadata                  = "metadata"
	colPublished                 = "published"
	cteContext                   = "context"
	cteVals                      = "vals"
	dialectPostgres              = "postgres"
	aliasCurrentVersion          = "current_version"
	castText                     = "?::text"
	castBigint                   = "?::bigint"
	castTimestamp                = "?::timestamp with time zone"
	castJsonb                    = "?::jsonb"
	pgUniqueViolationCode        = "23505"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// EventStore implements the per-aggregate append-only log on Postgres.
//
// The logical key shape of the underlying table follows the keyed-store contract:
// partition = (domain, aggregate_id), sort key = version. A bigserial
// global_sequence column provides the commit-ordered feed consumed by the
// outbox relay.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	logger         eventstore.Logger
	metrics        eventstore.MetricsCollector
}

type queryResultRow struct {
	domain            string
	aggregateID       string
	version           int64
	eventType         string
	occurredAt        time.Time
	payload           []byte
	metadata          []byte
	globalSequence    int64
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return applyOptions(EventStore{
		db:             adapters.NewPGXAdapter(db),
		eventTableName: defaultEventTableName,
	}, options)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return applyOptions(EventStore{
		db:             adapters.NewSQLAdapter(db),
		eventTableName: defaultEventTableName,
	}, options)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return applyOptions(EventStore{
		db:             adapters.NewSQLXAdapter(db),
		eventTableName: defaultEventTableName,
	}, options)
}

func applyOptions(es EventStore, options []Option) (EventStore, error) {
	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// ReadStream retrieves all events of one stream with version > fromVersion,
// in ascending version order.
func (es EventStore) ReadStream(
	ctx context.Context,
	stream eventstore.StreamID,
	fromVersion eventstore.StreamVersionUint,
) (eventstore.CommittedEvents, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colDomain, colAggregateID, colVersion, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalSequence).
		Where(
			goqu.Ex{colDomain: stream.Domain},
			goqu.Ex{colAggregateID: stream.AggregateID},
			goqu.C(colVersion).Gt(int64(fromVersion)),
		).
		Order(goqu.I(colVersion).Asc())

	events, duration, err := es.runSelect(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	es.logOperation(
		logMsgStreamRead,
		logAttrStream, stream.String(),
		logAttrEventCount, len(events),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return events, nil
}

// ReadAll retrieves up to limit events across all streams with
// global sequence > afterGlobalSequence, in commit order.
// It serves replays and projection rebuilds over settled history; the live
// outbox feed is FetchUnpublished, which cannot skip late-committing rows.
func (es EventStore) ReadAll(
	ctx context.Context,
	afterGlobalSequence eventstore.GlobalSequenceUint64,
	limit int,
) (eventstore.CommittedEvents, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colDomain, colAggregateID, colVersion, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalSequence).
		Where(goqu.C(colGlobalSequence).Gt(int64(afterGlobalSequence))). //nolint:gosec // sequence fits int64, it is a bigserial
		Order(goqu.I(colGlobalSequence).Asc()).
		Limit(uint(limit)) //nolint:gosec // limit is a small positive batch size

	events, duration, err := es.runSelect(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	es.logOperation(
		logMsgGlobalRead,
		logAttrEventCount, len(events),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return events, nil
}

// FetchUnpublished retrieves up to limit committed events that have not been
// relayed to the bus yet, ordered by global sequence.
//
// Global sequence numbers are claimed before commit, so commits can become
// visible out of sequence order. Selecting by the published marker instead of
// a sequence checkpoint guarantees that a late-committing row is still found
// on a later poll.
func (es EventStore) FetchUnpublished(
	ctx context.Context,
	limit int,
) (eventstore.CommittedEvents, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colDomain, colAggregateID, colVersion, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalSequence).
		Where(goqu.C(colPublished).IsFalse()).
		Order(goqu.I(colGlobalSequence).Asc()).
		Limit(uint(limit)) //nolint:gosec // limit is a small positive batch size

	events, duration, err := es.runSelect(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	es.logOperation(
		logMsgOutboxRead,
		logAttrEventCount, len(events),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return events, nil
}

// MarkPublished flags the events with the given global sequences as relayed.
// An event whose publish was acknowledged but whose marker update failed will
// be fetched and published again - the outbox is at-least-once.
func (es EventStore) MarkPublished(
	ctx context.Context,
	sequences ...eventstore.GlobalSequenceUint64,
) error {

	if len(sequences) == 0 {
		return nil
	}

	sequenceValues := make([]int64, len(sequences))
	for i, sequence := range sequences {
		sequenceValues[i] = int64(sequence) //nolint:gosec // sequence fits int64, it is a bigserial
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(es.eventTableName).
		Set(goqu.Record{colPublished: true}).
		Where(goqu.C(colGlobalSequence).In(sequenceValues))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgToSQLFailed, logAttrError, toSQLErr.Error())
		}

		return errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionMarkPublished, duration)

	if execErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return errors.Join(eventstore.ErrMarkingEventsPublishedFailed, execErr)
	}

	es.logOperation(logMsgEventsMarkedPublished, logAttrEventCount, len(sequences))

	return nil
}

// Append atomically appends the given events to the stream with contiguous
// versions starting at expectedVersion+1, but only if the stream's highest
// existing version equals expectedVersion.
//
// Otherwise it fails with eventstore.ErrConcurrencyConflict and leaves the
// stream untouched. All events of one call commit together or not at all.
func (es EventStore) Append(
	ctx context.Context,
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	sqlQuery, buildQueryErr := es.buildAppendQuery(stream, expectedVersion, allEvents)
	if buildQueryErr != nil {
		return buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeAppendQuery(ctx, sqlQuery, stream, expectedVersion)
	if execErr != nil {
		return execErr
	}

	if err := es.validateAppendResult(rowsAffected, len(allEvents), stream, expectedVersion); err != nil {
		return err
	}

	es.logOperation(
		logMsgEventsAppended,
		logAttrStream, stream.String(),
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	es.recordDuration(appendDurationMetric, duration, stream)

	return nil
}

// runSelect executes a select statement and scans the resulting committed events.
func (es EventStore) runSelect(ctx context.Context, selectStmt *goqu.SelectDataset) (
	eventstore.CommittedEvents,
	queryDuration,
	error,
) {

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, toSQLErr.Error())
		}

		return nil, 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionRead, duration)

	if queryErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, duration, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(rows)

	events, scanErr := es.processQueryResults(rows)
	if scanErr != nil {
		return nil, duration, scanErr
	}

	return events, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (es EventStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// processQueryResults converts database rows to committed events.
func (es EventStore) processQueryResults(rows adapters.DBRows) (eventstore.CommittedEvents, error) {
	result := queryResultRow{}
	events := make(eventstore.CommittedEvents, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.domain,
			&result.aggregateID,
			&result.version,
			&result.eventType,
			&result.occurredAt,
			&result.payload,
			&result.metadata,
			&result.globalSequence,
		)
		if rowScanErr != nil {
			if es.logger != nil {
				es.logger.Error(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			}

			return nil, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		storableEvent, buildErr := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildErr != nil {
			if es.logger != nil {
				es.logger.Error(logMsgScanRowFailed, logAttrError, buildErr.Error())
			}

			return nil, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		events = append(events, eventstore.CommittedEvent{
			StorableEvent: storableEvent,
			Stream: eventstore.StreamID{
				Domain:      result.domain,
				AggregateID: result.aggregateID,
			},
			Version:        eventstore.StreamVersionUint(result.version),  //nolint:gosec // versions are positive
			GlobalSequence: eventstore.GlobalSequenceUint64(result.globalSequence), //nolint:gosec // sequences are positive
		})
	}

	return events, nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es EventStore) buildAppendQuery(
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	allEvents eventstore.StorableEvents,
) (sqlQueryString, error) {

	var sqlQuery sqlQueryString
	var buildQueryErr error

	switch len(allEvents) {
	case 1:
		sqlQuery, buildQueryErr = es.buildInsertQueryForSingleEvent(stream, expectedVersion, allEvents[0])

	default:
		sqlQuery, buildQueryErr = es.buildInsertQueryForMultipleEvents(stream, expectedVersion, allEvents)
	}

	if buildQueryErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventCount, len(allEvents))
		}

		return "", buildQueryErr
	}

	return sqlQuery, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (es EventStore) executeAppendQuery(
	ctx context.Context,
	sqlQuery string,
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
) (rowsAffectedInt64, queryDuration, error) {

	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		// Two appends may pass the version guard in parallel; the unique index
		// on (domain, aggregate_id, version) then rejects the loser.
		if isUniqueViolation(execErr) {
			es.logConflict(stream, expectedVersion, 0, 0)
			return 0, duration, eventstore.ErrConcurrencyConflict
		}

		if es.logger != nil {
			es.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, duration, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, duration, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult checks if the append operation was successful and detects concurrency conflicts.
func (es EventStore) validateAppendResult(
	rowsAffected int64,
	expectedEventCount int,
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
) error {

	if rowsAffected < int64(expectedEventCount) {
		es.logConflict(stream, expectedVersion, expectedEventCount, rowsAffected)
		return eventstore.ErrConcurrencyConflict
	}

	return nil
}

func (es EventStore) logConflict(
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	expectedEventCount int,
	rowsAffected int64,
) {
	es.logOperation(
		logMsgConcurrencyConflict,
		logAttrStream, stream.String(),
		logAttrExpectedEvents, expectedEventCount,
		logAttrRowsAffected, rowsAffected,
		logAttrExpectedVersion, expectedVersion,
	)

	if es.metrics != nil {
		es.metrics.IncrementCounter(conflictCounterMetric, map[string]string{metricLabelDomain: stream.Domain})
	}
}

func (es EventStore) buildInsertQueryForSingleEvent(
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	event eventstore.StorableEvent,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE: highest existing version of this stream
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colVersion), 0).As(aliasCurrentVersion)).
		Where(
			goqu.Ex{colDomain: stream.Domain},
			goqu.Ex{colAggregateID: stream.AggregateID},
		)

	// Define the SELECT for the INSERT, guarded by the expected version
	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.V(stream.Domain),
			goqu.V(stream.AggregateID),
			goqu.V(int64(expectedVersion)+1),
			goqu.V(event.EventType),
			goqu.V(event.OccurredAt),
			goqu.V(event.PayloadJSON),
			goqu.V(event.MetadataJSON),
		).
		Where(goqu.C(aliasCurrentVersion).Eq(goqu.V(int64(expectedVersion))))

	// Finalize the full INSERT query
	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colDomain, colAggregateID, colVersion, colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgToSQLFailed, logAttrError, toSQLErr.Error())
		}
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	events eventstore.StorableEvents,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE: highest existing version of this stream
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colVersion), 0).As(aliasCurrentVersion)).
		Where(
			goqu.Ex{colDomain: stream.Domain},
			goqu.Ex{colAggregateID: stream.AggregateID},
		)

	// Create individual SELECT statements for each event, carrying its target version
	unionStatements := make([]*goqu.SelectDataset, len(events))
	for i, event := range events {
		unionStatements[i] = builder.
			Select(
				goqu.L(castBigint, int64(expectedVersion)+int64(i)+1).As(colVersion),
				goqu.L(castText, event.EventType).As(colEventType),
				goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
				goqu.L(castJsonb, event.PayloadJSON).As(colPayload),
				goqu.L(castJsonb, event.MetadataJSON).As(colMetadata),
			)
	}

	// Combine all SELECT statements with UNION ALL
	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	// Finalize the full INSERT query
	valsVersion := fmt.Sprintf("%s.%s", cteVals, colVersion)
	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, colOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, colMetadata)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colDomain, colAggregateID, colVersion, colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(goqu.V(stream.Domain), goqu.V(stream.AggregateID), valsVersion, valsEventType, valsOccurredAt, valsPayload, valsMetadata).
				Where(goqu.C(aliasCurrentVersion).Eq(goqu.V(int64(expectedVersion)))).
				Order(goqu.I(valsVersion).Asc()),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgToSQLFailed, logAttrError, toSQLErr.Error(), logAttrEventCount, len(events))
		}
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// isUniqueViolation reports whether the error is a Postgres unique constraint
// violation, for both the pgx and the lib/pq driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolationCode
	}

	return false
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (es EventStore) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, es.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (es EventStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es EventStore) recordDuration(metric string, duration time.Duration, stream eventstore.StreamID) {
	if es.metrics != nil {
		es.metrics.RecordDuration(metric, duration, map[string]string{metricLabelDomain: stream.Domain})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es EventStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
