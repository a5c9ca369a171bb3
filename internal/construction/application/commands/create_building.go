package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/google/uuid"
)

// CreateBuildingCommand adds a building of a given type to a project.
type CreateBuildingCommand struct {
	ProjectID uuid.UUID
	Name      string
	Template  domain.BuildingTemplate
	Today     time.Time
}

// CreateBuildingResult contains the new building ID and its position.
type CreateBuildingResult struct {
	BuildingID uuid.UUID
	Position   int
}

// CreateBuildingHandler handles the CreateBuildingCommand.
type CreateBuildingHandler struct {
	deps Deps
}

// NewCreateBuildingHandler creates a new CreateBuildingHandler.
func NewCreateBuildingHandler(deps Deps) *CreateBuildingHandler {
	return &CreateBuildingHandler{deps: deps.withDefaults()}
}

// Handle executes the CreateBuildingCommand.
func (h *CreateBuildingHandler) Handle(ctx context.Context, cmd CreateBuildingCommand) (*CreateBuildingResult, error) {
	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*CreateBuildingResult, error) {
		project, err := h.deps.Projects.FindByID(txCtx, cmd.ProjectID)
		if err != nil {
			return nil, err
		}

		materials := make(map[string]uuid.UUID)
		for _, name := range cmd.Template.MaterialNames() {
			m, err := h.deps.Materials.FindByName(txCtx, name)
			if err != nil {
				return nil, fmt.Errorf("template material %q: %w", name, err)
			}
			materials[name] = m.ID()
		}

		building, err := cmd.Template.Instantiate(project.ID(), cmd.Name, materials, today(cmd.Today))
		if err != nil {
			return nil, err
		}
		project.AddBuilding(building)

		if err := h.deps.Buildings.Save(txCtx, building); err != nil {
			return nil, err
		}

		h.deps.Logger.InfoContext(ctx, "building created",
			"project_id", project.ID(),
			"building_id", building.ID(),
			"stages", len(building.Stages()),
		)
		return &CreateBuildingResult{BuildingID: building.ID(), Position: building.Position()}, nil
	})
}
