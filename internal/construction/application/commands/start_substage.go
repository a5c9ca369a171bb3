package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// StartSubstageCommand moves a sub-stage to ongoing.
type StartSubstageCommand struct {
	SubstageID    uuid.UUID
	Today         time.Time
	CorrelationID uuid.UUID
}

// StartSubstageHandler handles the StartSubstageCommand.
type StartSubstageHandler struct {
	transition substageTransition
}

// NewStartSubstageHandler creates a new StartSubstageHandler.
func NewStartSubstageHandler(deps Deps) *StartSubstageHandler {
	return &StartSubstageHandler{transition: substageTransition{deps: deps.withDefaults(), op: "substage.start"}}
}

// Handle executes the StartSubstageCommand.
func (h *StartSubstageHandler) Handle(ctx context.Context, cmd StartSubstageCommand) (*TransitionResult, error) {
	day := today(cmd.Today)
	return h.transition.run(ctx, cmd.SubstageID, cmd.CorrelationID, func(b *domain.Building) error {
		return b.StartSubstage(cmd.SubstageID, day)
	})
}
