package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// FinishSubstageCommand moves an ongoing sub-stage to finished.
type FinishSubstageCommand struct {
	SubstageID    uuid.UUID
	Today         time.Time
	CorrelationID uuid.UUID
}

// FinishSubstageHandler handles the FinishSubstageCommand.
type FinishSubstageHandler struct {
	transition substageTransition
}

// NewFinishSubstageHandler creates a new FinishSubstageHandler.
func NewFinishSubstageHandler(deps Deps) *FinishSubstageHandler {
	return &FinishSubstageHandler{transition: substageTransition{deps: deps.withDefaults(), op: "substage.finish"}}
}

// Handle executes the FinishSubstageCommand.
func (h *FinishSubstageHandler) Handle(ctx context.Context, cmd FinishSubstageCommand) (*TransitionResult, error) {
	day := today(cmd.Today)
	return h.transition.run(ctx, cmd.SubstageID, cmd.CorrelationID, func(b *domain.Building) error {
		return b.FinishSubstage(cmd.SubstageID, day)
	})
}
