package core

import (
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEventType is the event type identifier.
const UserRegisteredEventType = "UserRegistered"

// UserRegistered represents when a user completed registration with the platform.
// The principal has already been verified by the external identity provider.
type UserRegistered struct {
	EventType  string
	UserID     UserIDString
	TenantID   TenantIDString
	Email      string
	Role       string
	OccurredAt OccurredAtTS
}

// BuildUserRegistered creates a new UserRegistered event.
func BuildUserRegistered(userID uuid.UUID, tenantID string, email string, role string, occurredAt time.Time) UserRegistered {
	return UserRegistered{
		EventType:  UserRegisteredEventType,
		UserID:     userID.String(),
		TenantID:   tenantID,
		Email:      email,
		Role:       role,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e UserRegistered) IsEventType() string {
	return UserRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}
