package cli

import (
	"context"
	"errors"

	internalApp "github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Project handlers
	CreateProject   *commands.CreateProjectHandler
	ListProjects    *queries.ListProjectsHandler
	ProjectProgress *queries.GetProjectProgressHandler
	PreviewPayments *queries.PreviewPaymentsHandler
	PayProject      *commands.PayProjectHandler

	// Building handlers
	CreateBuilding   *commands.CreateBuildingHandler
	DeleteBuilding   *commands.DeleteBuildingHandler
	StopBuilding     *commands.StopBuildingHandler
	ListBuildings    *queries.ListBuildingsHandler
	BuildingProgress *queries.GetBuildingProgressHandler

	// Sub-stage handlers
	StartSubstage  *commands.StartSubstageHandler
	FinishSubstage *commands.FinishSubstageHandler
	ResetSubstage  *commands.ResetSubstageHandler
	SetLaborCost   *commands.SetLaborCostHandler
	RecordUsage    *commands.RecordMaterialUsageHandler
	SubstageCost   *queries.GetSubstageCostHandler

	// Material handlers
	CreateMaterial      *commands.CreateMaterialHandler
	RecordMaterialPrice *commands.RecordMaterialPriceHandler
	GetMaterial         *queries.GetMaterialHandler
	ListMaterials       *queries.ListMaterialsHandler
}

// NewApp exposes the container's handlers to the commands.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateProject:       c.CreateProject,
		ListProjects:        c.ListProjects,
		ProjectProgress:     c.ProjectProgress,
		PreviewPayments:     c.PreviewPayments,
		PayProject:          c.PayProject,
		CreateBuilding:      c.CreateBuilding,
		DeleteBuilding:      c.DeleteBuilding,
		StopBuilding:        c.StopBuilding,
		ListBuildings:       c.ListBuildings,
		BuildingProgress:    c.BuildingProgress,
		StartSubstage:       c.StartSubstage,
		FinishSubstage:      c.FinishSubstage,
		ResetSubstage:       c.ResetSubstage,
		SetLaborCost:        c.SetLaborCost,
		RecordUsage:         c.RecordUsage,
		SubstageCost:        c.SubstageCost,
		CreateMaterial:      c.CreateMaterial,
		RecordMaterialPrice: c.RecordMaterialPrice,
		GetMaterial:         c.GetMaterial,
		ListMaterials:       c.ListMaterials,
	}
}

var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance, or ErrNotInitialized.
func GetApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}

// ResolveMaterial looks a material up by ID, or by name when ref is not a
// UUID.
func (a *App) ResolveMaterial(ctx context.Context, ref string) (*queries.MaterialDTO, error) {
	query := queries.GetMaterialQuery{Name: ref}
	if id, err := uuid.Parse(ref); err == nil {
		query = queries.GetMaterialQuery{MaterialID: id}
	}
	return a.GetMaterial.Handle(ctx, query)
}
