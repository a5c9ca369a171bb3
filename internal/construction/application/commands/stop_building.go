package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
)

// StopBuildingCommand halts all remaining work on a building.
type StopBuildingCommand struct {
	BuildingID    uuid.UUID
	Today         time.Time
	CorrelationID uuid.UUID
}

// StopBuildingHandler handles the StopBuildingCommand.
type StopBuildingHandler struct {
	deps Deps
}

// NewStopBuildingHandler creates a new StopBuildingHandler.
func NewStopBuildingHandler(deps Deps) *StopBuildingHandler {
	return &StopBuildingHandler{deps: deps.withDefaults()}
}

// Handle executes the StopBuildingCommand.
func (h *StopBuildingHandler) Handle(ctx context.Context, cmd StopBuildingCommand) error {
	day := today(cmd.Today)
	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UoW, func(txCtx context.Context) error {
		building, err := h.deps.Buildings.FindByID(txCtx, cmd.BuildingID)
		if err != nil {
			return err
		}

		building.Stop(day)

		if err := h.deps.Buildings.Save(txCtx, building); err != nil {
			return err
		}
		return saveEvents(txCtx, h.deps.Outbox, building, cmd.CorrelationID)
	})
	if err != nil {
		return err
	}

	h.deps.Logger.InfoContext(ctx, "building stopped", "building_id", cmd.BuildingID)
	invalidate(ctx, h.deps, cmd.BuildingID)
	return nil
}
