package finishworkoutsession

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/shared/core"
)

const commandType = "FinishWorkoutSession"

// Command represents the intent to finish a workout session.
// PrincipalID and TenantID are the externally verified identity claims of the
// caller; the core performs no credential verification itself.
type Command struct {
	SessionID   uuid.UUID
	PrincipalID core.PrincipalIDString
	TenantID    core.TenantIDString
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(sessionID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		SessionID:  sessionID,
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
