// Package planning holds the workout template aggregate of the planning domain.
package planning

import (
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

// Exercise is one planned exercise within a workout template.
type Exercise struct {
	Name   string
	Weight float64
	Sets   int
	Reps   int
}

// TemplateState is the replayed state of a workout template aggregate.
// Archived marks the terminal state, no further transitions are allowed
// while the history stays readable.
type TemplateState struct {
	Exists    bool
	Archived  bool
	OwnerID   core.UserIDString
	Name      string
	Exercises map[core.ExerciseIDString]Exercise
}

// InitialTemplateState returns the state of a nonexistent template.
func InitialTemplateState() TemplateState {
	return TemplateState{}
}

// HasExercise reports whether the template contains the given exercise.
func (s TemplateState) HasExercise(exerciseID core.ExerciseIDString) bool {
	_, ok := s.Exercises[exerciseID]
	return ok
}

// ReduceTemplate folds one domain event into the template state.
// The exercises map is only ever touched during a replay of a freshly
// loaded state, so in-place mutation is safe here.
func ReduceTemplate(state TemplateState, event core.DomainEvent) TemplateState {
	switch actualEvent := event.(type) {
	case core.WorkoutTemplateCreated:
		state.Exists = true
		state.OwnerID = actualEvent.OwnerID
		state.Name = actualEvent.Name
		state.Exercises = make(map[core.ExerciseIDString]Exercise)

	case core.ExerciseAddedToTemplate:
		state.Exercises[actualEvent.ExerciseID] = Exercise{
			Name:   actualEvent.Name,
			Weight: actualEvent.Weight,
			Sets:   actualEvent.Sets,
			Reps:   actualEvent.Reps,
		}

	case core.ExerciseWeightUpdated:
		exercise := state.Exercises[actualEvent.ExerciseID]
		exercise.Weight = actualEvent.NewWeight
		state.Exercises[actualEvent.ExerciseID] = exercise

	case core.WorkoutTemplateArchived:
		state.Archived = true
	}

	return state
}

// NewTemplateRepository builds the repository for workout template aggregates.
func NewTemplateRepository(eventStore shell.EventStreamer) (shell.Repository[TemplateState], error) {
	return shell.NewRepository(eventStore, core.DomainPlanning, InitialTemplateState, ReduceTemplate)
}
