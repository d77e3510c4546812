package eventstore

import (
	"errors"
)

var ErrEmptyEventsTableName = errors.New("empty eventTableName supplied")
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrConcurrencyConflict = errors.New("concurrency error, expected stream version is stale")
var ErrNoEventsToAppend = errors.New("no events to append")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrAppendingEventFailed = errors.New("appending event failed")
var ErrMarkingEventsPublishedFailed = errors.New("marking events published failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrBuildingStorableEventFailed = errors.New("building storable event failed")

// StreamVersionUint is a type alias for uint, representing the per-stream sequence number of an event.
// Versions start at 1 and are contiguous - the store guarantees no gaps and no duplicates.
type StreamVersionUint = uint

// GlobalSequenceUint64 is a type alias for uint64, representing the commit-ordered
// position of an event across all streams of a store partition.
type GlobalSequenceUint64 = uint64
