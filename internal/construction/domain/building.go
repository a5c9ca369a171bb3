package domain

import (
	"fmt"
	"sort"
	"time"

	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
)

// Building is the aggregate root owning its stages, their sub-stages and
// the material usages below them. Every workflow change goes through it.
type Building struct {
	sharedDomain.BaseAggregateRoot
	projectID uuid.UUID
	name      string
	status    WorkStatus
	position  int
	stages    []*Stage
}

// NewBuilding creates an empty not-started building.
func NewBuilding(projectID uuid.UUID, name string) (*Building, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Building{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		projectID:         projectID,
		name:              name,
		status:            StatusNotStarted,
		stages:            []*Stage{},
	}, nil
}

// Getters
func (b *Building) ProjectID() uuid.UUID { return b.projectID }
func (b *Building) Name() string         { return b.name }
func (b *Building) Status() WorkStatus   { return b.status }
func (b *Building) Position() int        { return b.position }
func (b *Building) Stages() []*Stage     { return b.stages }

// SetPosition sets the display order within the project.
func (b *Building) SetPosition(position int) {
	b.position = position
	b.Touch()
}

// AddStage appends a stage at the next position.
func (b *Building) AddStage(name string) (*Stage, error) {
	stage, err := NewStage(b.ID(), name, len(b.stages)+1)
	if err != nil {
		return nil, err
	}
	b.stages = append(b.stages, stage)
	b.Touch()
	return stage, nil
}

// FindStage returns the stage with the given ID.
func (b *Building) FindStage(id uuid.UUID) (*Stage, error) {
	for _, st := range b.stages {
		if st.id == id {
			return st, nil
		}
	}
	return nil, ErrStageNotFound
}

// FindSubstage returns a sub-stage and its owning stage.
func (b *Building) FindSubstage(id uuid.UUID) (*Stage, *Substage, error) {
	for _, st := range b.stages {
		if sub := st.FindSubstage(id); sub != nil {
			return st, sub, nil
		}
	}
	return nil, nil, ErrSubstageNotFound
}

// Substages returns every sub-stage in stage then sub-stage order.
func (b *Building) Substages() []*Substage {
	var all []*Substage
	for _, st := range b.stages {
		all = append(all, st.substages...)
	}
	return all
}

// ActiveSubstage returns the ongoing sub-stage, if any.
func (b *Building) ActiveSubstage() *Substage {
	for _, st := range b.stages {
		for _, sub := range st.substages {
			if sub.status == StatusOngoing {
				return sub
			}
		}
	}
	return nil
}

// CanDelete reports whether the building holds no paid work.
func (b *Building) CanDelete() bool {
	if b.status == StatusPaid {
		return false
	}
	for _, st := range b.stages {
		if st.containsPaid() {
			return false
		}
	}
	return true
}

// StartSubstage moves a sub-stage to ongoing. Starting the sub-stage that is
// already ongoing succeeds without change.
func (b *Building) StartSubstage(substageID uuid.UUID, today time.Time) error {
	stage, sub, err := b.FindSubstage(substageID)
	if err != nil {
		return err
	}
	if err := CanStart(b, substageID); err != nil {
		return err
	}
	if sub.status == StatusOngoing {
		return nil
	}
	return b.transition(stage, sub, StatusOngoing, today)
}

// FinishSubstage moves an ongoing sub-stage to finished.
func (b *Building) FinishSubstage(substageID uuid.UUID, today time.Time) error {
	stage, sub, err := b.FindSubstage(substageID)
	if err != nil {
		return err
	}
	if err := CanFinish(sub); err != nil {
		return err
	}
	return b.transition(stage, sub, StatusFinished, today)
}

// ResetSubstage returns an ongoing sub-stage to not started.
func (b *Building) ResetSubstage(substageID uuid.UUID, today time.Time) error {
	stage, sub, err := b.FindSubstage(substageID)
	if err != nil {
		return err
	}
	if err := CanReset(sub); err != nil {
		return err
	}
	return b.transition(stage, sub, StatusNotStarted, today)
}

// Stop halts the whole building. See StopBuilding.
func (b *Building) Stop(today time.Time) {
	StopBuilding(b, today)
}

func (b *Building) transition(stage *Stage, sub *Substage, to WorkStatus, today time.Time) error {
	from := sub.status
	if err := ApplyTransition(sub, to, today); err != nil {
		return err
	}
	Cascade(b, stage)
	b.recordStatusChange(stage, sub, from, today)
	return nil
}

func (b *Building) recordStatusChange(stage *Stage, sub *Substage, from WorkStatus, today time.Time) {
	if from == sub.status {
		return
	}
	b.AddDomainEvent(NewSubstageStatusChanged(b.ID(), stage.id, sub.id, from, sub.status, today))
	b.Touch()
}

func (b *Building) mustOwn(stage *Stage) {
	if stage.buildingID != b.ID() {
		panic(fmt.Sprintf("stage %s belongs to building %s, not %s", stage.id, stage.buildingID, b.ID()))
	}
}

// RehydrateBuilding recreates a building from persisted data. Stages are
// sorted by position.
func RehydrateBuilding(
	root sharedDomain.BaseAggregateRoot,
	projectID uuid.UUID,
	name string,
	status WorkStatus,
	position int,
	stages []*Stage,
) *Building {
	if stages == nil {
		stages = []*Stage{}
	}
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].order < stages[j].order })
	return &Building{
		BaseAggregateRoot: root,
		projectID:         projectID,
		name:              name,
		status:            status,
		position:          position,
		stages:            stages,
	}
}
