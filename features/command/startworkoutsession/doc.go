// Package startworkoutsession implements the Start Workout Session use case
// of the execution domain. A session may reference a planning template, but
// the execution domain never reads the planning domain's streams, it only
// records the reference.
package startworkoutsession
