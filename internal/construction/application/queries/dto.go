// Package queries holds the read side of the construction context.
package queries

import (
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// BuildingProgressDTO is the progress tree of one building.
type BuildingProgressDTO struct {
	ID        uuid.UUID          `json:"id"`
	ProjectID uuid.UUID          `json:"project_id"`
	Name      string             `json:"name"`
	Position  int                `json:"position"`
	Status    string             `json:"status"`
	Progress  float64            `json:"progress"`
	Percent   int                `json:"percent"`
	Stages    []StageProgressDTO `json:"stages"`
}

// StageProgressDTO is the progress of one stage and its sub-stages.
type StageProgressDTO struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Order     int                   `json:"order"`
	Status    string                `json:"status"`
	Progress  float64               `json:"progress"`
	Percent   int                   `json:"percent"`
	StartDate *time.Time            `json:"start_date,omitempty"`
	EndDate   *time.Time            `json:"end_date,omitempty"`
	Substages []SubstageProgressDTO `json:"substages"`
}

// SubstageProgressDTO is the state of one sub-stage.
type SubstageProgressDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Status    string     `json:"status"`
	Label     string     `json:"label"`
	Progress  float64    `json:"progress"`
	LaborCost string     `json:"labor_cost"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Usages    int        `json:"usages"`
}

// BuildingSummaryDTO is one row of a building listing.
type BuildingSummaryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
	Status   string    `json:"status"`
	Percent  int       `json:"percent"`
}

func toBuildingProgressDTO(b *domain.Building) *BuildingProgressDTO {
	progress := domain.BuildingProgress(b)
	dto := &BuildingProgressDTO{
		ID:        b.ID(),
		ProjectID: b.ProjectID(),
		Name:      b.Name(),
		Position:  b.Position(),
		Status:    b.Status().String(),
		Progress:  progress,
		Percent:   domain.Percent(progress),
		Stages:    make([]StageProgressDTO, len(b.Stages())),
	}
	for i, st := range b.Stages() {
		dto.Stages[i] = toStageProgressDTO(st)
	}
	return dto
}

func toStageProgressDTO(st *domain.Stage) StageProgressDTO {
	progress := domain.StageProgress(st)
	dto := StageProgressDTO{
		ID:        st.ID(),
		Name:      st.Name(),
		Order:     st.Order(),
		Status:    st.Status().String(),
		Progress:  progress,
		Percent:   domain.Percent(progress),
		StartDate: st.StartDate(),
		EndDate:   st.EndDate(),
		Substages: make([]SubstageProgressDTO, len(st.Substages())),
	}
	for i, s := range st.Substages() {
		dto.Substages[i] = SubstageProgressDTO{
			ID:        s.ID(),
			Name:      s.Name(),
			Order:     s.Order(),
			Status:    s.Status().String(),
			Label:     s.Status().Label(),
			Progress:  domain.SubstageProgress(s),
			LaborCost: s.LaborCost().StringFixed(2),
			StartDate: s.StartDate(),
			EndDate:   s.EndDate(),
			Usages:    len(s.Usages()),
		}
	}
	return dto
}

func toBuildingSummaryDTO(b *domain.Building) BuildingSummaryDTO {
	return BuildingSummaryDTO{
		ID:       b.ID(),
		Name:     b.Name(),
		Position: b.Position(),
		Status:   b.Status().String(),
		Percent:  domain.Percent(domain.BuildingProgress(b)),
	}
}
