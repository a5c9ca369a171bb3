package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/report"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
)

type progressInput struct {
	ProjectID  string `json:"project_id,omitempty"`
	BuildingID string `json:"building_id,omitempty"`
}

type substageInput struct {
	SubstageID string `json:"substage_id" jsonschema:"required"`
	Date       string `json:"date,omitempty"`
}

type substageIDInput struct {
	SubstageID string `json:"substage_id" jsonschema:"required"`
}

type projectIDInput struct {
	ProjectID string `json:"project_id" jsonschema:"required"`
	Date      string `json:"date,omitempty"`
}

// transitionOutput reports a sub-stage transition and its cascade.
type transitionOutput struct {
	BuildingID     string `json:"building_id"`
	SubstageID     string `json:"substage_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	StageStatus    string `json:"stage_status"`
	BuildingStatus string `json:"building_status"`
}

// costOutput is the priced cost of a sub-stage.
type costOutput struct {
	SubstageID string           `json:"substage_id"`
	BuildingID string           `json:"building_id"`
	Stage      string           `json:"stage"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Frozen     bool             `json:"frozen"`
	Labor      string           `json:"labor"`
	Materials  string           `json:"materials"`
	Total      string           `json:"total"`
	Lines      []costLineOutput `json:"lines"`
}

type costLineOutput struct {
	Material  string `json:"material"`
	Unit      string `json:"unit"`
	Quantity  string `json:"quantity"`
	Date      string `json:"date"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount"`
}

type toolset struct {
	deps ToolDependencies
}

func (t *toolset) progress(ctx context.Context, input progressInput) (any, error) {
	app := t.deps.App
	projectID, err := optionalID(input.ProjectID, "project")
	if err != nil {
		return nil, err
	}
	buildingID, err := optionalID(input.BuildingID, "building")
	if err != nil {
		return nil, err
	}

	switch {
	case buildingID != uuid.Nil && projectID != uuid.Nil:
		return nil, errors.New("give either project_id or building_id, not both")
	case buildingID != uuid.Nil:
		if app.BuildingProgress == nil {
			return nil, errors.New("building progress requires database connection")
		}
		return app.BuildingProgress.Handle(ctx, queries.GetBuildingProgressQuery{BuildingID: buildingID})
	case projectID != uuid.Nil:
		if app.ProjectProgress == nil {
			return nil, errors.New("project progress requires database connection")
		}
		return app.ProjectProgress.Handle(ctx, queries.GetProjectProgressQuery{ProjectID: projectID})
	default:
		if app.ListProjects == nil {
			return nil, errors.New("project listing requires database connection")
		}
		return app.ListProjects.Handle(ctx)
	}
}

func (t *toolset) start(ctx context.Context, input substageInput) (*transitionOutput, error) {
	app := t.deps.App
	if app.StartSubstage == nil {
		return nil, errors.New("starting work requires database connection")
	}
	return t.transition(ctx, input, func(id, correlationID uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.StartSubstage.Handle(ctx, commands.StartSubstageCommand{SubstageID: id, Today: day, CorrelationID: correlationID})
	})
}

func (t *toolset) finish(ctx context.Context, input substageInput) (*transitionOutput, error) {
	app := t.deps.App
	if app.FinishSubstage == nil {
		return nil, errors.New("finishing work requires database connection")
	}
	return t.transition(ctx, input, func(id, correlationID uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.FinishSubstage.Handle(ctx, commands.FinishSubstageCommand{SubstageID: id, Today: day, CorrelationID: correlationID})
	})
}

func (t *toolset) reset(ctx context.Context, input substageInput) (*transitionOutput, error) {
	app := t.deps.App
	if app.ResetSubstage == nil {
		return nil, errors.New("resetting work requires database connection")
	}
	return t.transition(ctx, input, func(id, correlationID uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.ResetSubstage.Handle(ctx, commands.ResetSubstageCommand{SubstageID: id, Today: day, CorrelationID: correlationID})
	})
}

func (t *toolset) transition(
	ctx context.Context,
	input substageInput,
	apply func(id, correlationID uuid.UUID, day time.Time) (*commands.TransitionResult, error),
) (*transitionOutput, error) {
	id, err := requiredID(input.SubstageID, "substage")
	if err != nil {
		return nil, err
	}
	day, err := cli.ParseDay(input.Date)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.New()
	if raw := observability.CorrelationIDFromContext(ctx); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			correlationID = parsed
		}
	}

	result, err := apply(id, correlationID, day)
	if err != nil {
		return nil, err
	}
	return &transitionOutput{
		BuildingID:     result.BuildingID.String(),
		SubstageID:     result.SubstageID.String(),
		From:           result.From.String(),
		To:             result.To.String(),
		StageStatus:    result.StageStatus.String(),
		BuildingStatus: result.BuildingStatus.String(),
	}, nil
}

func (t *toolset) cost(ctx context.Context, input substageIDInput) (*costOutput, error) {
	app := t.deps.App
	if app.SubstageCost == nil {
		return nil, errors.New("costing requires database connection")
	}
	id, err := requiredID(input.SubstageID, "substage")
	if err != nil {
		return nil, err
	}

	cost, err := app.SubstageCost.Handle(ctx, queries.GetSubstageCostQuery{SubstageID: id})
	if err != nil {
		return nil, err
	}

	out := &costOutput{
		SubstageID: cost.SubstageID.String(),
		BuildingID: cost.BuildingID.String(),
		Stage:      cost.StageName,
		Name:       cost.Name,
		Status:     cost.Status,
		Frozen:     cost.Frozen,
		Labor:      cost.Labor.StringFixed(2),
		Materials:  cost.Materials.StringFixed(2),
		Total:      cost.Total().StringFixed(2),
		Lines:      make([]costLineOutput, 0, len(cost.Lines)),
	}
	for _, line := range cost.Lines {
		out.Lines = append(out.Lines, costLineOutput{
			Material:  line.Material,
			Unit:      line.Unit,
			Quantity:  line.Quantity.String(),
			Date:      line.Date.Format(domain.DateLayout),
			UnitPrice: line.UnitPrice.StringFixed(2),
			Amount:    line.Amount.StringFixed(2),
		})
	}
	return out, nil
}

func (t *toolset) previewPayments(ctx context.Context, input projectIDInput) (*report.Document, error) {
	app := t.deps.App
	if app.PreviewPayments == nil {
		return nil, errors.New("payment preview requires database connection")
	}
	id, err := requiredID(input.ProjectID, "project")
	if err != nil {
		return nil, err
	}
	day, err := cli.ParseDay(input.Date)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = time.Now()
	}

	batch, err := app.PreviewPayments.Handle(ctx, queries.PreviewPaymentsQuery{ProjectID: id})
	if err != nil {
		return nil, err
	}
	doc := report.NewDocument(batch, day)
	return &doc, nil
}

func (t *toolset) listMaterials(ctx context.Context, _ struct{}) ([]queries.MaterialDTO, error) {
	app := t.deps.App
	if app.ListMaterials == nil {
		return nil, errors.New("material listing requires database connection")
	}
	return app.ListMaterials.Handle(ctx)
}

// requiredID parses an id argument that must be present.
func requiredID(value, what string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%s_id is required", what)
	}
	return cli.ParseID(value, what)
}

func optionalID(value, what string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return cli.ParseID(value, what)
}
