package domain

import (
	"sort"
	"time"

	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/shopspring/decimal"
)

// PriceInterval is the unit price in effect from StartDate through EndDate,
// both inclusive. A nil EndDate means the price is still in effect.
type PriceInterval struct {
	StartDate    time.Time
	EndDate      *time.Time
	PricePerUnit decimal.Decimal
}

// Brackets reports whether the interval covers the given day.
func (p PriceInterval) Brackets(day time.Time) bool {
	day = Day(day)
	if day.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || !day.After(*p.EndDate)
}

// Material is a priced construction material with its price history.
type Material struct {
	sharedDomain.BaseAggregateRoot
	name         string
	unit         string
	currentPrice decimal.Decimal
	history      []PriceInterval
}

// NewMaterial creates a material whose price history starts at effective.
func NewMaterial(name, unit string, price decimal.Decimal, effective time.Time) (*Material, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	return &Material{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		unit:              unit,
		currentPrice:      price,
		history:           []PriceInterval{{StartDate: Day(effective), PricePerUnit: price}},
	}, nil
}

// Getters
func (m *Material) Name() string                  { return m.name }
func (m *Material) Unit() string                  { return m.unit }
func (m *Material) CurrentPrice() decimal.Decimal { return m.currentPrice }
func (m *Material) History() []PriceInterval      { return m.history }

// RecordPrice makes price current from the effective day on. The open
// interval is closed the day before.
func (m *Material) RecordPrice(price decimal.Decimal, effective time.Time) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	effective = Day(effective)

	if n := len(m.history); n > 0 {
		last := &m.history[n-1]
		if !effective.After(last.StartDate) {
			return ErrPriceOutOfOrder
		}
		if last.EndDate == nil || !last.EndDate.Before(effective) {
			closed := effective.AddDate(0, 0, -1)
			last.EndDate = &closed
		}
	}

	m.history = append(m.history, PriceInterval{StartDate: effective, PricePerUnit: price})
	m.currentPrice = price
	m.Touch()
	return nil
}

// RehydrateMaterial recreates a material from persisted data. History is
// sorted by start date.
func RehydrateMaterial(
	root sharedDomain.BaseAggregateRoot,
	name, unit string,
	currentPrice decimal.Decimal,
	history []PriceInterval,
) *Material {
	sorted := make([]PriceInterval, len(history))
	for i, iv := range history {
		sorted[i] = PriceInterval{StartDate: Day(iv.StartDate), PricePerUnit: iv.PricePerUnit}
		if iv.EndDate != nil {
			sorted[i].EndDate = dayPtr(*iv.EndDate)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })
	return &Material{
		BaseAggregateRoot: root,
		name:              name,
		unit:              unit,
		currentPrice:      currentPrice,
		history:           sorted,
	}
}

// ResolveUnitPrice returns the unit price to charge for a usage. Live usage
// pays the current price. Frozen usage pays the price in effect on its date,
// falling back to the latest interval starting on or before the date, then
// the earliest interval, then the current price.
//
// When several intervals bracket the date the one that started last wins.
func ResolveUnitPrice(m *Material, usageDate time.Time, frozen bool) decimal.Decimal {
	if !frozen {
		return m.currentPrice
	}
	day := Day(usageDate)

	var bracket, latest, earliest *PriceInterval
	for i := range m.history {
		iv := &m.history[i]
		if earliest == nil || iv.StartDate.Before(earliest.StartDate) {
			earliest = iv
		}
		if iv.StartDate.After(day) {
			continue
		}
		if latest == nil || iv.StartDate.After(latest.StartDate) {
			latest = iv
		}
		if iv.Brackets(day) && (bracket == nil || iv.StartDate.After(bracket.StartDate)) {
			bracket = iv
		}
	}

	switch {
	case bracket != nil:
		return bracket.PricePerUnit
	case latest != nil:
		return latest.PricePerUnit
	case earliest != nil:
		return earliest.PricePerUnit
	default:
		return m.currentPrice
	}
}
