package queries

import (
	"context"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// SubstageCostDTO is the priced cost of a sub-stage.
type SubstageCostDTO struct {
	domain.SubstageCost
	BuildingID uuid.UUID
	StageName  string
	Name       string
	Status     string
}

// GetSubstageCostQuery asks for the cost of a sub-stage.
type GetSubstageCostQuery struct {
	SubstageID uuid.UUID
}

// GetSubstageCostHandler handles the GetSubstageCostQuery.
type GetSubstageCostHandler struct {
	buildings domain.BuildingRepository
	materials domain.MaterialRepository
}

// NewGetSubstageCostHandler creates a new GetSubstageCostHandler.
func NewGetSubstageCostHandler(buildings domain.BuildingRepository, materials domain.MaterialRepository) *GetSubstageCostHandler {
	return &GetSubstageCostHandler{buildings: buildings, materials: materials}
}

// Handle executes the GetSubstageCostQuery.
func (h *GetSubstageCostHandler) Handle(ctx context.Context, query GetSubstageCostQuery) (*SubstageCostDTO, error) {
	building, err := h.buildings.FindBySubstage(ctx, query.SubstageID)
	if err != nil {
		return nil, err
	}
	stage, sub, err := building.FindSubstage(query.SubstageID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(sub.Usages()))
	seen := make(map[uuid.UUID]bool)
	for _, u := range sub.Usages() {
		if !seen[u.MaterialID()] {
			seen[u.MaterialID()] = true
			ids = append(ids, u.MaterialID())
		}
	}
	materials := map[uuid.UUID]*domain.Material{}
	if len(ids) > 0 {
		materials, err = h.materials.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	cost, err := domain.CostOf(sub, materials)
	if err != nil {
		return nil, err
	}
	return &SubstageCostDTO{
		SubstageCost: cost,
		BuildingID:   building.ID(),
		StageName:    stage.Name(),
		Name:         sub.Name(),
		Status:       sub.Status().String(),
	}, nil
}
