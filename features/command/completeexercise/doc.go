// Package completeexercise implements the Complete Exercise use case of the
// execution domain.
package completeexercise
