package commands

import (
	"context"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
)

// DeleteBuildingCommand removes a building that holds no paid work.
type DeleteBuildingCommand struct {
	BuildingID uuid.UUID
}

// DeleteBuildingHandler handles the DeleteBuildingCommand.
type DeleteBuildingHandler struct {
	deps Deps
}

// NewDeleteBuildingHandler creates a new DeleteBuildingHandler.
func NewDeleteBuildingHandler(deps Deps) *DeleteBuildingHandler {
	return &DeleteBuildingHandler{deps: deps.withDefaults()}
}

// Handle executes the DeleteBuildingCommand.
func (h *DeleteBuildingHandler) Handle(ctx context.Context, cmd DeleteBuildingCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UoW, func(txCtx context.Context) error {
		building, err := h.deps.Buildings.FindByID(txCtx, cmd.BuildingID)
		if err != nil {
			return err
		}
		if !building.CanDelete() {
			return domain.ErrContainsPaidWork
		}
		return h.deps.Buildings.Delete(txCtx, cmd.BuildingID)
	})
	if err != nil {
		return err
	}
	invalidate(ctx, h.deps, cmd.BuildingID)
	return nil
}
