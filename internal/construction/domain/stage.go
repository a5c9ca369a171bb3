package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage is an ordered group of sub-stages within a building.
type Stage struct {
	id         uuid.UUID
	buildingID uuid.UUID
	name       string
	order      int
	status     WorkStatus
	startDate  *time.Time
	endDate    *time.Time
	substages  []*Substage
}

// NewStage creates a not-started stage at the given 1-based position.
func NewStage(buildingID uuid.UUID, name string, order int) (*Stage, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Stage{
		id:         uuid.New(),
		buildingID: buildingID,
		name:       name,
		order:      order,
		status:     StatusNotStarted,
		substages:  []*Substage{},
	}, nil
}

// Getters
func (s *Stage) ID() uuid.UUID          { return s.id }
func (s *Stage) BuildingID() uuid.UUID  { return s.buildingID }
func (s *Stage) Name() string           { return s.name }
func (s *Stage) Order() int             { return s.order }
func (s *Stage) Status() WorkStatus     { return s.status }
func (s *Stage) StartDate() *time.Time  { return s.startDate }
func (s *Stage) EndDate() *time.Time    { return s.endDate }
func (s *Stage) Substages() []*Substage { return s.substages }

// AddSubstage appends a sub-stage at the next position.
func (s *Stage) AddSubstage(name string, laborCost decimal.Decimal) (*Substage, error) {
	sub, err := NewSubstage(s.id, name, len(s.substages)+1, laborCost)
	if err != nil {
		return nil, err
	}
	s.substages = append(s.substages, sub)
	return sub, nil
}

// FindSubstage returns the sub-stage with the given ID, or nil.
func (s *Stage) FindSubstage(id uuid.UUID) *Substage {
	for _, sub := range s.substages {
		if sub.id == id {
			return sub
		}
	}
	return nil
}

// SubstageAt returns the sub-stage at a 1-based position, or nil.
func (s *Stage) SubstageAt(order int) *Substage {
	for _, sub := range s.substages {
		if sub.order == order {
			return sub
		}
	}
	return nil
}

// SetStatus sets the status of a stage that has no sub-stages. Stages with
// sub-stages derive their status and refuse.
func (s *Stage) SetStatus(status WorkStatus, today time.Time) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if len(s.substages) > 0 {
		return ErrStageHasSubstages
	}
	s.force(status, today)
	return nil
}

// force assigns a status with the same date bookkeeping as a sub-stage transition.
func (s *Stage) force(status WorkStatus, today time.Time) {
	s.status = status
	switch status {
	case StatusNotStarted:
		s.startDate, s.endDate = nil, nil
	case StatusOngoing:
		if s.startDate == nil {
			s.startDate = dayPtr(today)
		}
		s.endDate = nil
	case StatusFinished, StatusPaid, StatusStopped:
		if s.startDate == nil {
			s.startDate = dayPtr(today)
		}
		s.endDate = dayPtr(today)
	}
}

func (s *Stage) containsPaid() bool {
	if s.status == StatusPaid {
		return true
	}
	for _, sub := range s.substages {
		if sub.status == StatusPaid {
			return true
		}
	}
	return false
}

// RehydrateStage recreates a stage from persisted data. Sub-stages are
// sorted by position.
func RehydrateStage(
	id, buildingID uuid.UUID,
	name string,
	order int,
	status WorkStatus,
	startDate, endDate *time.Time,
	substages []*Substage,
) *Stage {
	if substages == nil {
		substages = []*Substage{}
	}
	sort.SliceStable(substages, func(i, j int) bool { return substages[i].order < substages[j].order })
	return &Stage{
		id:         id,
		buildingID: buildingID,
		name:       name,
		order:      order,
		status:     status,
		startDate:  startDate,
		endDate:    endDate,
		substages:  substages,
	}
}
