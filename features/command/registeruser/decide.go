package registeruser

import (
	"strings"

	"github.com/fitgrid/platform/domain/identity"
	"github.com/fitgrid/platform/shared/core"
)

const minPasswordLength = 8

// Decide implements the business logic for registering a user.
// This is a pure function with no side effects - it takes the replayed
// aggregate state and a command and returns the decision.
//
// Business Rules:
//
//	GIVEN: A user aggregate with UserID
//	WHEN: RegisterUser command is received
//	THEN: UserRegistered event is generated
//	ERROR: validation of email, password and tenant fails
//	IDEMPOTENCY: If the user is already registered, no event is generated
func Decide(state identity.UserState, command Command) core.DecisionResult {
	if state.Registered {
		return core.IdempotentDecision()
	}

	if !strings.Contains(command.Email, "@") {
		return core.ErrorDecision(core.BuildValidationError("email", "must contain @"))
	}

	if len(command.Password) < minPasswordLength {
		return core.ErrorDecision(core.BuildValidationError("password", "must be at least 8 characters"))
	}

	if command.TenantID == "" {
		return core.ErrorDecision(core.BuildValidationError("tenant_id", "must not be empty"))
	}

	return core.SuccessDecision(
		core.BuildUserRegistered(
			command.UserID,
			command.TenantID,
			command.Email,
			command.Role,
			command.OccurredAt,
		),
	)
}
