package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialUsage records a quantity of material consumed by a sub-stage.
type MaterialUsage struct {
	id         uuid.UUID
	substageID uuid.UUID
	materialID uuid.UUID
	quantity   decimal.Decimal
	date       time.Time
	notes      string
}

// NewMaterialUsage creates a usage dated today.
func NewMaterialUsage(substageID, materialID uuid.UUID, quantity decimal.Decimal, notes string, today time.Time) (*MaterialUsage, error) {
	if quantity.IsNegative() {
		return nil, ErrNegativeQuantity
	}
	return &MaterialUsage{
		id:         uuid.New(),
		substageID: substageID,
		materialID: materialID,
		quantity:   quantity,
		date:       Day(today),
		notes:      notes,
	}, nil
}

// Getters
func (u *MaterialUsage) ID() uuid.UUID             { return u.id }
func (u *MaterialUsage) SubstageID() uuid.UUID     { return u.substageID }
func (u *MaterialUsage) MaterialID() uuid.UUID     { return u.materialID }
func (u *MaterialUsage) Quantity() decimal.Decimal { return u.quantity }
func (u *MaterialUsage) Date() time.Time           { return u.date }
func (u *MaterialUsage) Notes() string             { return u.notes }

// RehydrateMaterialUsage recreates a usage from persisted data.
func RehydrateMaterialUsage(id, substageID, materialID uuid.UUID, quantity decimal.Decimal, date time.Time, notes string) *MaterialUsage {
	return &MaterialUsage{
		id:         id,
		substageID: substageID,
		materialID: materialID,
		quantity:   quantity,
		date:       Day(date),
		notes:      notes,
	}
}
