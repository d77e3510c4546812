package core

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// IdempotentDecision(), SuccessDecision(events...), or ErrorDecision(err).
type DecisionResult struct {
	Outcome string       // "idempotent", "success", or "error"
	Events  DomainEvents // nil unless the decision succeeded
	Err     error
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{
		Outcome: idempotentOutcome,
	}
}

// SuccessDecision creates a DecisionResult with one or more events to append.
// All events of one decision commit atomically or not at all.
func SuccessDecision(events ...DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Events:  events,
	}
}

// ErrorDecision creates a DecisionResult indicating the aggregate state forbids
// the requested transition. Nothing is appended.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasEventsToAppend returns true if the decision produced events for the event store.
func (r DecisionResult) HasEventsToAppend() bool {
	return r.Outcome == successOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
