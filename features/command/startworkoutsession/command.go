package startworkoutsession

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/shared/core"
)

const commandType = "StartWorkoutSession"

// Command represents the intent to start a workout session.
// TemplateID is optional, an empty string means a freestyle session.
// PrincipalID and TenantID are the externally verified identity claims of the
// caller; the core performs no credential verification itself.
type Command struct {
	SessionID   uuid.UUID
	UserID      uuid.UUID
	TemplateID  core.TemplateIDString
	PrincipalID core.PrincipalIDString
	TenantID    core.TenantIDString
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(sessionID uuid.UUID, userID uuid.UUID, templateID string, occurredAt time.Time) Command {
	return Command{
		SessionID:  sessionID,
		UserID:     userID,
		TemplateID: templateID,
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
