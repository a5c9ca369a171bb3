package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routing keys for construction events.
const (
	RoutingKeySubstageStatusChanged = "construction.substage.status_changed"
	RoutingKeyBuildingStopped       = "construction.building.stopped"
	RoutingKeyPaymentsCommitted     = "construction.payments.committed"
)

// Aggregate type names.
const (
	AggregateBuilding = "building"
	AggregateProject  = "project"
)

// SubstageStatusChanged is recorded for every effective sub-stage transition.
type SubstageStatusChanged struct {
	sharedDomain.BaseEvent
	BuildingID uuid.UUID  `json:"building_id"`
	StageID    uuid.UUID  `json:"stage_id"`
	SubstageID uuid.UUID  `json:"substage_id"`
	From       WorkStatus `json:"from"`
	To         WorkStatus `json:"to"`
	On         string     `json:"on"`
}

// NewSubstageStatusChanged creates a status change event dated today.
func NewSubstageStatusChanged(buildingID, stageID, substageID uuid.UUID, from, to WorkStatus, today time.Time) *SubstageStatusChanged {
	return &SubstageStatusChanged{
		BaseEvent:  sharedDomain.NewBaseEvent(buildingID, AggregateBuilding, RoutingKeySubstageStatusChanged, time.Now()),
		BuildingID: buildingID,
		StageID:    stageID,
		SubstageID: substageID,
		From:       from,
		To:         to,
		On:         Day(today).Format(DateLayout),
	}
}

// BuildingStopped is recorded when a whole building is stopped.
type BuildingStopped struct {
	sharedDomain.BaseEvent
	BuildingID uuid.UUID `json:"building_id"`
	ProjectID  uuid.UUID `json:"project_id"`
	On         string    `json:"on"`
}

// NewBuildingStopped creates a building stopped event dated today.
func NewBuildingStopped(buildingID, projectID uuid.UUID, today time.Time) *BuildingStopped {
	return &BuildingStopped{
		BaseEvent:  sharedDomain.NewBaseEvent(buildingID, AggregateBuilding, RoutingKeyBuildingStopped, time.Now()),
		BuildingID: buildingID,
		ProjectID:  projectID,
		On:         Day(today).Format(DateLayout),
	}
}

// PaymentsCommitted is recorded when a payment batch has been applied.
type PaymentsCommitted struct {
	sharedDomain.BaseEvent
	ProjectID   uuid.UUID       `json:"project_id"`
	SubstageIDs []uuid.UUID     `json:"substage_ids"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	On          string          `json:"on"`
}

// NewPaymentsCommitted creates a payment event dated today.
func NewPaymentsCommitted(projectID uuid.UUID, substageIDs []uuid.UUID, total decimal.Decimal, today time.Time) *PaymentsCommitted {
	return &PaymentsCommitted{
		BaseEvent:   sharedDomain.NewBaseEvent(projectID, AggregateProject, RoutingKeyPaymentsCommitted, time.Now()),
		ProjectID:   projectID,
		SubstageIDs: substageIDs,
		GrandTotal:  total,
		On:          Day(today).Format(DateLayout),
	}
}
