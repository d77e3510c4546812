// Package createworkouttemplate implements the Create Workout Template use
// case of the planning domain.
package createworkouttemplate
