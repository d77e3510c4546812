// Package identity holds the user aggregate of the identity domain.
package identity

import (
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

// UserState is the replayed state of a user aggregate. A zero-valued state
// with Registered false means the aggregate does not exist yet.
type UserState struct {
	Registered bool
	UserID     core.UserIDString
	TenantID   core.TenantIDString
	Email      string
	Role       string
}

// InitialUserState returns the state of a nonexistent user.
func InitialUserState() UserState {
	return UserState{}
}

// ReduceUser folds one domain event into the user state.
func ReduceUser(state UserState, event core.DomainEvent) UserState {
	switch actualEvent := event.(type) {
	case core.UserRegistered:
		state.Registered = true
		state.UserID = actualEvent.UserID
		state.TenantID = actualEvent.TenantID
		state.Email = actualEvent.Email
		state.Role = actualEvent.Role
	}

	return state
}

// NewUserRepository builds the repository for user aggregates.
func NewUserRepository(eventStore shell.EventStreamer) (shell.Repository[UserState], error) {
	return shell.NewRepository(eventStore, core.DomainIdentity, InitialUserState, ReduceUser)
}
