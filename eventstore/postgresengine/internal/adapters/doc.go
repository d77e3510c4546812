// Package adapters provides uniform database access over pgxpool.Pool,
// database/sql and sqlx.DB for the Postgres event store engine.
package adapters
