// Package addexercisetotemplate implements the Add Exercise to Template use
// case of the planning domain.
package addexercisetotemplate
