package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialDTO is a material with its price history.
type MaterialDTO struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Unit         string             `json:"unit"`
	CurrentPrice decimal.Decimal    `json:"current_price"`
	History      []PriceIntervalDTO `json:"history"`
}

// PriceIntervalDTO is one entry of a price history. A nil EndDate is open.
type PriceIntervalDTO struct {
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

func toMaterialDTO(m *domain.Material) MaterialDTO {
	history := make([]PriceIntervalDTO, len(m.History()))
	for i, p := range m.History() {
		history[i] = PriceIntervalDTO{StartDate: p.StartDate, EndDate: p.EndDate, PricePerUnit: p.PricePerUnit}
	}
	return MaterialDTO{
		ID:           m.ID(),
		Name:         m.Name(),
		Unit:         m.Unit(),
		CurrentPrice: m.CurrentPrice(),
		History:      history,
	}
}

// GetMaterialQuery looks a material up by ID or, when ID is nil, by name.
type GetMaterialQuery struct {
	MaterialID uuid.UUID
	Name       string
}

// GetMaterialHandler handles the GetMaterialQuery.
type GetMaterialHandler struct {
	materials domain.MaterialRepository
}

// NewGetMaterialHandler creates a new GetMaterialHandler.
func NewGetMaterialHandler(materials domain.MaterialRepository) *GetMaterialHandler {
	return &GetMaterialHandler{materials: materials}
}

// Handle executes the GetMaterialQuery.
func (h *GetMaterialHandler) Handle(ctx context.Context, query GetMaterialQuery) (*MaterialDTO, error) {
	var (
		m   *domain.Material
		err error
	)
	if query.MaterialID != uuid.Nil {
		m, err = h.materials.FindByID(ctx, query.MaterialID)
	} else {
		m, err = h.materials.FindByName(ctx, query.Name)
	}
	if err != nil {
		return nil, err
	}
	dto := toMaterialDTO(m)
	return &dto, nil
}

// ListMaterialsHandler lists every material by name.
type ListMaterialsHandler struct {
	materials domain.MaterialRepository
}

// NewListMaterialsHandler creates a new ListMaterialsHandler.
func NewListMaterialsHandler(materials domain.MaterialRepository) *ListMaterialsHandler {
	return &ListMaterialsHandler{materials: materials}
}

// Handle executes the listing.
func (h *ListMaterialsHandler) Handle(ctx context.Context) ([]MaterialDTO, error) {
	materials, err := h.materials.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]MaterialDTO, len(materials))
	for i, m := range materials {
		dtos[i] = toMaterialDTO(m)
	}
	return dtos, nil
}
