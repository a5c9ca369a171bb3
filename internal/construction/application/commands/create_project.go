package commands

import (
	"context"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
)

// CreateProjectCommand contains the data needed to create a project.
type CreateProjectCommand struct {
	Name string
}

// CreateProjectResult contains the result of creating a project.
type CreateProjectResult struct {
	ProjectID uuid.UUID
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	deps Deps
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(deps Deps) *CreateProjectHandler {
	return &CreateProjectHandler{deps: deps.withDefaults()}
}

// Handle executes the CreateProjectCommand.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*CreateProjectResult, error) {
	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*CreateProjectResult, error) {
		project, err := domain.NewProject(cmd.Name)
		if err != nil {
			return nil, err
		}
		if err := h.deps.Projects.Save(txCtx, project); err != nil {
			return nil, err
		}
		return &CreateProjectResult{ProjectID: project.ID()}, nil
	})
}
