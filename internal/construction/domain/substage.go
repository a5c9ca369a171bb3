package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Substage is the smallest unit of schedulable work. It is the only level
// whose status is set by a transition request.
type Substage struct {
	id        uuid.UUID
	stageID   uuid.UUID
	name      string
	order     int
	status    WorkStatus
	startDate *time.Time
	endDate   *time.Time
	laborCost decimal.Decimal
	usages    []*MaterialUsage
}

// NewSubstage creates a not-started sub-stage at the given 1-based position.
func NewSubstage(stageID uuid.UUID, name string, order int, laborCost decimal.Decimal) (*Substage, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if laborCost.IsNegative() {
		return nil, ErrNegativeLaborCost
	}
	return &Substage{
		id:        uuid.New(),
		stageID:   stageID,
		name:      name,
		order:     order,
		status:    StatusNotStarted,
		laborCost: laborCost,
		usages:    []*MaterialUsage{},
	}, nil
}

// Getters
func (s *Substage) ID() uuid.UUID              { return s.id }
func (s *Substage) StageID() uuid.UUID         { return s.stageID }
func (s *Substage) Name() string               { return s.name }
func (s *Substage) Order() int                 { return s.order }
func (s *Substage) Status() WorkStatus         { return s.status }
func (s *Substage) StartDate() *time.Time      { return s.startDate }
func (s *Substage) EndDate() *time.Time        { return s.endDate }
func (s *Substage) LaborCost() decimal.Decimal { return s.laborCost }
func (s *Substage) Usages() []*MaterialUsage   { return s.usages }

// IsFrozen reports whether usage dates and prices are pinned to the end date.
func (s *Substage) IsFrozen() bool {
	return s.status.FreezesUsage()
}

// SetLaborCost changes the labor cost. Paid work keeps what it was paid,
// and finished work stays payable.
func (s *Substage) SetLaborCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return ErrNegativeLaborCost
	}
	switch s.status {
	case StatusPaid:
		return ErrSubstagePaid
	case StatusFinished:
		if !cost.IsPositive() {
			return validationError("labor", s, ErrLaborCostRequired)
		}
	}
	s.laborCost = cost
	return nil
}

// RecordUsage adds material consumed today. Frozen sub-stages refuse new usage.
func (s *Substage) RecordUsage(materialID uuid.UUID, quantity decimal.Decimal, notes string, today time.Time) (*MaterialUsage, error) {
	if s.IsFrozen() {
		return nil, ErrUsageFrozen
	}
	usage, err := NewMaterialUsage(s.id, materialID, quantity, notes, today)
	if err != nil {
		return nil, err
	}
	s.usages = append(s.usages, usage)
	return usage, nil
}

// TrackToday moves every usage date to today while the sub-stage is not frozen.
func (s *Substage) TrackToday(today time.Time) {
	if s.IsFrozen() {
		return
	}
	for _, u := range s.usages {
		u.date = Day(today)
	}
}

func (s *Substage) freezeUsages() {
	if s.endDate == nil {
		return
	}
	for _, u := range s.usages {
		u.date = *s.endDate
	}
}

// RehydrateSubstage recreates a sub-stage from persisted data.
func RehydrateSubstage(
	id, stageID uuid.UUID,
	name string,
	order int,
	status WorkStatus,
	startDate, endDate *time.Time,
	laborCost decimal.Decimal,
	usages []*MaterialUsage,
) *Substage {
	if usages == nil {
		usages = []*MaterialUsage{}
	}
	return &Substage{
		id:        id,
		stageID:   stageID,
		name:      name,
		order:     order,
		status:    status,
		startDate: startDate,
		endDate:   endDate,
		laborCost: laborCost,
		usages:    usages,
	}
}
