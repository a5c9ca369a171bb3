package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// ProjectDTO summarizes a project and its buildings.
type ProjectDTO struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Progress  float64              `json:"progress"`
	Percent   int                  `json:"percent"`
	Buildings []BuildingSummaryDTO `json:"buildings"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func toProjectDTO(p *domain.Project) ProjectDTO {
	progress := domain.ProjectProgress(p)
	dto := ProjectDTO{
		ID:        p.ID(),
		Name:      p.Name(),
		Progress:  progress,
		Percent:   domain.Percent(progress),
		Buildings: make([]BuildingSummaryDTO, len(p.Buildings())),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
	for i, b := range p.Buildings() {
		dto.Buildings[i] = toBuildingSummaryDTO(b)
	}
	return dto
}

// GetProjectProgressQuery asks for a project's progress.
type GetProjectProgressQuery struct {
	ProjectID uuid.UUID
}

// GetProjectProgressHandler handles the GetProjectProgressQuery.
type GetProjectProgressHandler struct {
	projects domain.ProjectRepository
}

// NewGetProjectProgressHandler creates a new GetProjectProgressHandler.
func NewGetProjectProgressHandler(projects domain.ProjectRepository) *GetProjectProgressHandler {
	return &GetProjectProgressHandler{projects: projects}
}

// Handle executes the GetProjectProgressQuery.
func (h *GetProjectProgressHandler) Handle(ctx context.Context, query GetProjectProgressQuery) (*ProjectDTO, error) {
	project, err := h.projects.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	dto := toProjectDTO(project)
	return &dto, nil
}

// ListProjectsHandler lists every project.
type ListProjectsHandler struct {
	projects domain.ProjectRepository
}

// NewListProjectsHandler creates a new ListProjectsHandler.
func NewListProjectsHandler(projects domain.ProjectRepository) *ListProjectsHandler {
	return &ListProjectsHandler{projects: projects}
}

// Handle lists projects in creation order.
func (h *ListProjectsHandler) Handle(ctx context.Context) ([]ProjectDTO, error) {
	projects, err := h.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	return dtos, nil
}
