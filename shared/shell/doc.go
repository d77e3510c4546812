// Package shell contains the imperative glue between the pure domain core and
// the infrastructure contracts: converting domain events to and from their
// storable representation, stamping event metadata, replaying aggregates
// through registered reducers, and retrying appends on concurrency conflicts.
package shell
