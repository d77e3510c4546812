// Package eventstore defines the shared vocabulary of the event-sourcing core:
// stream identity, storable/committed event DTOs, the error taxonomy of the
// store contract, and the observability interfaces implemented by adapters.
//
// Every aggregate owns one append-only stream identified by (domain, aggregate id).
// Appends are guarded by optimistic concurrency: the caller supplies the stream
// version it based its decision on, and the store commits the new events with
// contiguous versions only if that expectation still holds - otherwise it fails
// with ErrConcurrencyConflict and leaves the stream untouched.
//
// Engines implementing the contract live in the subpackages postgresengine
// (production) and memoryengine (tests, demos).
package eventstore
