package domain

import (
	"context"

	"github.com/google/uuid"
)

// BuildingRepository persists buildings together with their stages,
// sub-stages and material usages.
type BuildingRepository interface {
	// Save persists the whole building graph (create or update).
	Save(ctx context.Context, building *Building) error

	// FindByID loads a building graph.
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)

	// FindBySubstage loads the building owning a sub-stage.
	FindBySubstage(ctx context.Context, substageID uuid.UUID) (*Building, error)

	// FindByProject loads every building of a project in position order.
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*Building, error)

	// Delete removes a building. It refuses with ErrContainsPaidWork.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository persists projects. Loaded projects carry their buildings;
// Save writes only the project itself.
type ProjectRepository interface {
	Save(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
}

// MaterialRepository persists materials with their price history.
type MaterialRepository interface {
	Save(ctx context.Context, material *Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	FindByName(ctx context.Context, name string) (*Material, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Material, error)
	List(ctx context.Context) ([]*Material, error)
}
