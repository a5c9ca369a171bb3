package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLine is the priced cost of one material usage.
type CostLine struct {
	UsageID   uuid.UUID
	Material  string
	Unit      string
	Quantity  decimal.Decimal
	Date      time.Time
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// SubstageCost is the labor and material cost of a sub-stage.
type SubstageCost struct {
	SubstageID uuid.UUID
	Frozen     bool
	Labor      decimal.Decimal
	Materials  decimal.Decimal
	Lines      []CostLine
}

// Total is labor plus materials.
func (c SubstageCost) Total() decimal.Decimal {
	return c.Labor.Add(c.Materials)
}

// CostOf prices a sub-stage's usages against materials, keyed by material
// ID. Frozen sub-stages use historical prices on each usage date.
func CostOf(s *Substage, materials map[uuid.UUID]*Material) (SubstageCost, error) {
	cost := SubstageCost{
		SubstageID: s.id,
		Frozen:     s.IsFrozen(),
		Labor:      s.laborCost,
		Materials:  decimal.Zero,
		Lines:      make([]CostLine, 0, len(s.usages)),
	}

	for _, u := range s.usages {
		m, ok := materials[u.materialID]
		if !ok {
			return SubstageCost{}, fmt.Errorf("usage %s references material %s: %w", u.id, u.materialID, ErrMaterialNotFound)
		}
		price := ResolveUnitPrice(m, u.date, cost.Frozen)
		amount := u.quantity.Mul(price)
		cost.Lines = append(cost.Lines, CostLine{
			UsageID:   u.id,
			Material:  m.name,
			Unit:      m.unit,
			Quantity:  u.quantity,
			Date:      u.date,
			UnitPrice: price,
			Amount:    amount,
		})
		cost.Materials = cost.Materials.Add(amount)
	}
	return cost, nil
}
