package addexercisetotemplate

import (
	"context"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/shared/shell"
)

// CommandHandler orchestrates the command processing workflow:
// Load -> Decide -> Save, with retry on concurrency conflicts.
type CommandHandler struct {
	repository   shell.Repository[planning.TemplateState]
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler backed by the given event store.
func NewCommandHandler(eventStore shell.EventStreamer, opts ...Option) (CommandHandler, error) {
	repository, err := planning.NewTemplateRepository(eventStore)
	if err != nil {
		return CommandHandler{}, err
	}

	handler := CommandHandler{repository: repository}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler, nil
}

// Handle executes the command processing workflow with retry on conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) error {
	return shell.RetryOnConcurrencyConflict(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	state, currentVersion, err := h.repository.Load(ctx, command.TemplateID.String())
	if err != nil {
		return err
	}

	result := Decide(state, command)

	if decisionErr := result.HasError(); decisionErr != nil {
		return decisionErr
	}

	if !result.HasEventsToAppend() {
		return nil
	}

	uid := uuid.New()
	metadata := shell.BuildEventMetadata(uid, uid, uid).
		WithPrincipal(command.PrincipalID, command.TenantID)

	return h.repository.Save(ctx, command.TemplateID.String(), currentVersion, metadata, result.Events)
}
