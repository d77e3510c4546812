// Package updateexerciseweight implements the Update Exercise Weight use case
// of the planning domain.
//
// The generated event records both the previous and the new working weight so
// that downstream consumers can reason about progression deltas.
package updateexerciseweight
