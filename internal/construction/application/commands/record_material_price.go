package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordMaterialPriceCommand makes a new unit price current from EffectiveDate.
type RecordMaterialPriceCommand struct {
	MaterialID    uuid.UUID
	Price         decimal.Decimal
	EffectiveDate time.Time
}

// RecordMaterialPriceHandler handles the RecordMaterialPriceCommand.
type RecordMaterialPriceHandler struct {
	deps Deps
}

// NewRecordMaterialPriceHandler creates a new RecordMaterialPriceHandler.
func NewRecordMaterialPriceHandler(deps Deps) *RecordMaterialPriceHandler {
	return &RecordMaterialPriceHandler{deps: deps.withDefaults()}
}

// Handle executes the RecordMaterialPriceCommand.
func (h *RecordMaterialPriceHandler) Handle(ctx context.Context, cmd RecordMaterialPriceCommand) error {
	effective := today(cmd.EffectiveDate)
	return sharedApplication.WithUnitOfWork(ctx, h.deps.UoW, func(txCtx context.Context) error {
		material, err := h.deps.Materials.FindByID(txCtx, cmd.MaterialID)
		if err != nil {
			return err
		}
		if err := material.RecordPrice(cmd.Price, effective); err != nil {
			return err
		}
		return h.deps.Materials.Save(txCtx, material)
	})
}
