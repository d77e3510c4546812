// Package finishworkoutsession implements the Finish Workout Session use case
// of the execution domain. Finishing is terminal for the session.
package finishworkoutsession
