package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordMaterialUsageCommand records material consumed by a sub-stage today.
type RecordMaterialUsageCommand struct {
	SubstageID uuid.UUID
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	Notes      string
	Today      time.Time
}

// RecordMaterialUsageResult contains the new usage ID.
type RecordMaterialUsageResult struct {
	UsageID uuid.UUID
}

// RecordMaterialUsageHandler handles the RecordMaterialUsageCommand.
type RecordMaterialUsageHandler struct {
	deps Deps
}

// NewRecordMaterialUsageHandler creates a new RecordMaterialUsageHandler.
func NewRecordMaterialUsageHandler(deps Deps) *RecordMaterialUsageHandler {
	return &RecordMaterialUsageHandler{deps: deps.withDefaults()}
}

// Handle executes the RecordMaterialUsageCommand.
func (h *RecordMaterialUsageHandler) Handle(ctx context.Context, cmd RecordMaterialUsageCommand) (*RecordMaterialUsageResult, error) {
	day := today(cmd.Today)
	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*RecordMaterialUsageResult, error) {
		if _, err := h.deps.Materials.FindByID(txCtx, cmd.MaterialID); err != nil {
			return nil, err
		}
		building, err := h.deps.Buildings.FindBySubstage(txCtx, cmd.SubstageID)
		if err != nil {
			return nil, err
		}
		_, sub, err := building.FindSubstage(cmd.SubstageID)
		if err != nil {
			return nil, err
		}

		usage, err := sub.RecordUsage(cmd.MaterialID, cmd.Quantity, cmd.Notes, day)
		if err != nil {
			return nil, err
		}
		sub.TrackToday(day)
		building.Touch()

		if err := h.deps.Buildings.Save(txCtx, building); err != nil {
			return nil, err
		}
		return &RecordMaterialUsageResult{UsageID: usage.ID()}, nil
	})
}
