// Package postgresengine implements the event store contract on PostgreSQL.
//
// The append guard is expressed in a single conditional INSERT: a CTE selects
// the stream's highest existing version, and the INSERT only selects rows when
// that version equals the caller's expectation. A concurrent writer that
// slips past the guard is caught by the unique index and reported as the same
// concurrency conflict. No lock is held while the command handler computes.
//
// Expected table shape (table name configurable via WithTableName):
//
//	CREATE TABLE events (
//	    global_sequence BIGSERIAL PRIMARY KEY,
//	    domain          TEXT        NOT NULL,
//	    aggregate_id    TEXT        NOT NULL,
//	    version         BIGINT      NOT NULL,
//	    event_type      TEXT        NOT NULL,
//	    occurred_at     TIMESTAMPTZ NOT NULL,
//	    payload         JSONB       NOT NULL,
//	    metadata        JSONB       NOT NULL,
//	    published       BOOLEAN     NOT NULL DEFAULT FALSE,
//	    UNIQUE (domain, aggregate_id, version)
//	);
//
//	CREATE INDEX events_unpublished_idx
//	    ON events (global_sequence) WHERE NOT published;
//
// The published marker is the outbox state of a row: the relay fetches rows
// where it is false and flips it after the bus acknowledged the publish.
//
// The store supports pgxpool.Pool, database/sql and sqlx.DB connections via
// the adapters in internal/adapters.
package postgresengine
