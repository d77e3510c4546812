// Package execution holds the workout session aggregate of the execution domain.
package execution

import (
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

// CompletedExercise records the result of one finished exercise in a session.
type CompletedExercise struct {
	ExerciseID core.ExerciseIDString
	Weight     float64
	Reps       int
}

// SessionState is the replayed state of a workout session aggregate.
// Finished marks the terminal state of the session.
type SessionState struct {
	Started            bool
	Finished           bool
	UserID             core.UserIDString
	TemplateID         core.TemplateIDString
	CompletedExercises []CompletedExercise
}

// InitialSessionState returns the state of a nonexistent session.
func InitialSessionState() SessionState {
	return SessionState{}
}

// ReduceSession folds one domain event into the session state.
func ReduceSession(state SessionState, event core.DomainEvent) SessionState {
	switch actualEvent := event.(type) {
	case core.WorkoutSessionStarted:
		state.Started = true
		state.UserID = actualEvent.UserID
		state.TemplateID = actualEvent.TemplateID

	case core.ExerciseCompleted:
		state.CompletedExercises = append(state.CompletedExercises, CompletedExercise{
			ExerciseID: actualEvent.ExerciseID,
			Weight:     actualEvent.Weight,
			Reps:       actualEvent.Reps,
		})

	case core.WorkoutSessionFinished:
		state.Finished = true
	}

	return state
}

// NewSessionRepository builds the repository for workout session aggregates.
func NewSessionRepository(eventStore shell.EventStreamer) (shell.Repository[SessionState], error) {
	return shell.NewRepository(eventStore, core.DomainExecution, InitialSessionState, ReduceSession)
}
