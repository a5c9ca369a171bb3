package queries

import (
	"context"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// ListBuildingsQuery lists the buildings of a project.
type ListBuildingsQuery struct {
	ProjectID uuid.UUID
}

// ListBuildingsHandler handles the ListBuildingsQuery.
type ListBuildingsHandler struct {
	buildings domain.BuildingRepository
}

// NewListBuildingsHandler creates a new ListBuildingsHandler.
func NewListBuildingsHandler(buildings domain.BuildingRepository) *ListBuildingsHandler {
	return &ListBuildingsHandler{buildings: buildings}
}

// Handle executes the ListBuildingsQuery.
func (h *ListBuildingsHandler) Handle(ctx context.Context, query ListBuildingsQuery) ([]BuildingSummaryDTO, error) {
	buildings, err := h.buildings.FindByProject(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	dtos := make([]BuildingSummaryDTO, len(buildings))
	for i, b := range buildings {
		dtos[i] = toBuildingSummaryDTO(b)
	}
	return dtos, nil
}
