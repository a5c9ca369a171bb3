package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetLaborCostCommand changes the labor cost of a sub-stage.
type SetLaborCostCommand struct {
	SubstageID uuid.UUID
	LaborCost  decimal.Decimal
}

// SetLaborCostHandler handles the SetLaborCostCommand.
type SetLaborCostHandler struct {
	deps Deps
}

// NewSetLaborCostHandler creates a new SetLaborCostHandler.
func NewSetLaborCostHandler(deps Deps) *SetLaborCostHandler {
	return &SetLaborCostHandler{deps: deps.withDefaults()}
}

// Handle executes the SetLaborCostCommand.
func (h *SetLaborCostHandler) Handle(ctx context.Context, cmd SetLaborCostCommand) error {
	var buildingID uuid.UUID
	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UoW, func(txCtx context.Context) error {
		building, err := h.deps.Buildings.FindBySubstage(txCtx, cmd.SubstageID)
		if err != nil {
			return err
		}
		_, sub, err := building.FindSubstage(cmd.SubstageID)
		if err != nil {
			return err
		}
		if err := sub.SetLaborCost(cmd.LaborCost); err != nil {
			return err
		}
		building.Touch()
		buildingID = building.ID()
		return h.deps.Buildings.Save(txCtx, building)
	})
	if err != nil {
		return err
	}
	invalidate(ctx, h.deps, buildingID)
	return nil
}
