package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialCommand contains the data needed to create a material.
type CreateMaterialCommand struct {
	Name          string
	Unit          string
	Price         decimal.Decimal
	EffectiveDate time.Time
}

// CreateMaterialResult contains the new material ID.
type CreateMaterialResult struct {
	MaterialID uuid.UUID
}

// CreateMaterialHandler handles the CreateMaterialCommand.
type CreateMaterialHandler struct {
	deps Deps
}

// NewCreateMaterialHandler creates a new CreateMaterialHandler.
func NewCreateMaterialHandler(deps Deps) *CreateMaterialHandler {
	return &CreateMaterialHandler{deps: deps.withDefaults()}
}

// Handle executes the CreateMaterialCommand.
func (h *CreateMaterialHandler) Handle(ctx context.Context, cmd CreateMaterialCommand) (*CreateMaterialResult, error) {
	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*CreateMaterialResult, error) {
		material, err := domain.NewMaterial(cmd.Name, cmd.Unit, cmd.Price, today(cmd.EffectiveDate))
		if err != nil {
			return nil, err
		}
		if err := h.deps.Materials.Save(txCtx, material); err != nil {
			return nil, err
		}
		return &CreateMaterialResult{MaterialID: material.ID()}, nil
	})
}
