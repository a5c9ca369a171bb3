package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// ResetSubstageCommand returns an ongoing sub-stage to not started.
type ResetSubstageCommand struct {
	SubstageID    uuid.UUID
	Today         time.Time
	CorrelationID uuid.UUID
}

// ResetSubstageHandler handles the ResetSubstageCommand.
type ResetSubstageHandler struct {
	transition substageTransition
}

// NewResetSubstageHandler creates a new ResetSubstageHandler.
func NewResetSubstageHandler(deps Deps) *ResetSubstageHandler {
	return &ResetSubstageHandler{transition: substageTransition{deps: deps.withDefaults(), op: "substage.reset"}}
}

// Handle executes the ResetSubstageCommand.
func (h *ResetSubstageHandler) Handle(ctx context.Context, cmd ResetSubstageCommand) (*TransitionResult, error) {
	day := today(cmd.Today)
	return h.transition.run(ctx, cmd.SubstageID, cmd.CorrelationID, func(b *domain.Building) error {
		return b.ResetSubstage(cmd.SubstageID, day)
	})
}
