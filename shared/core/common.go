package core

import (
	"time"
)

// Instead of implementing full value objects, alias types and helper methods are used here ...

// UserIDString represents a user identifier
type UserIDString = string

// TenantIDString represents a tenant identifier
type TenantIDString = string

// PrincipalIDString represents the externally verified identity acting on a command
type PrincipalIDString = string

// TemplateIDString represents a workout template identifier
type TemplateIDString = string

// ExerciseIDString represents an exercise identifier within a template
type ExerciseIDString = string

// SessionIDString represents a workout session identifier
type SessionIDString = string

// OccurredAtTS represents when an event occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// Bounded-context tags. Each domain exclusively owns its event streams.
const (
	DomainIdentity  = "identity"
	DomainPlanning  = "planning"
	DomainExecution = "execution"
)
