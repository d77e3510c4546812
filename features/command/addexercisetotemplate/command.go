package addexercisetotemplate

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/shared/core"
)

const commandType = "AddExerciseToTemplate"

// Command represents the intent to add an exercise to a workout template.
// PrincipalID and TenantID are the externally verified identity claims of the
// caller; the core performs no credential verification itself.
type Command struct {
	TemplateID  uuid.UUID
	ExerciseID  uuid.UUID
	Name        string
	Weight      float64
	Sets        int
	Reps        int
	PrincipalID core.PrincipalIDString
	TenantID    core.TenantIDString
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	templateID uuid.UUID,
	exerciseID uuid.UUID,
	name string,
	weight float64,
	sets int,
	reps int,
	occurredAt time.Time,
) Command {

	return Command{
		TemplateID: templateID,
		ExerciseID: exerciseID,
		Name:       name,
		Weight:     weight,
		Sets:       sets,
		Reps:       reps,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// WithPrincipal returns a copy of the command carrying the externally
// verified principal and tenant identifiers attached by the caller.
func (c Command) WithPrincipal(principalID core.PrincipalIDString, tenantID core.TenantIDString) Command {
	c.PrincipalID = principalID
	c.TenantID = tenantID

	return c
}
