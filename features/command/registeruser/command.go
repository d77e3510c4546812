package registeruser

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/shared/core"
)

const (
	commandType = "RegisterUser"

	// DefaultRole is assigned when the command does not specify a role.
	DefaultRole = "User"
)

// Command represents the intent to register a user with the platform.
// Password is validated but never leaves this package.
type Command struct {
	UserID     uuid.UUID
	TenantID   core.TenantIDString
	Email      string
	Password   string
	Role       string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// An empty role falls back to DefaultRole.
func BuildCommand(userID uuid.UUID, tenantID string, email string, password string, role string, occurredAt time.Time) Command {
	if role == "" {
		role = DefaultRole
	}

	return Command{
		UserID:     userID,
		TenantID:   tenantID,
		Email:      email,
		Password:   password,
		Role:       role,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
