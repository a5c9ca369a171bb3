// Package commands holds the write side of the construction context. Every
// handler runs load, mutate and save inside one unit of work so a single
// building graph is never mutated concurrently.
package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
)

// ProgressInvalidator drops cached progress for a building after it changes.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, buildingID uuid.UUID) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uuid.UUID) error { return nil }

// Deps bundles the collaborators shared by the building command handlers.
type Deps struct {
	Buildings domain.BuildingRepository
	Projects  domain.ProjectRepository
	Materials domain.MaterialRepository
	Outbox    outbox.Repository
	UoW       sharedApplication.UnitOfWork
	Cache     ProgressInvalidator
	Logger    *slog.Logger
	Metrics   observability.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = noopInvalidator{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NoopMetrics{}
	}
	return d
}

// today returns the calendar day of t, or of now when t is zero.
func today(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return domain.Day(t)
}

// saveEvents writes the aggregate's pending events to the outbox in the
// current transaction and clears them.
func saveEvents(ctx context.Context, repo outbox.Repository, aggregate sharedDomain.AggregateRoot, correlationID uuid.UUID) error {
	events := aggregate.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.StampEvents(events, correlationID)

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	aggregate.ClearDomainEvents()
	return nil
}

// TransitionResult reports the statuses after a sub-stage transition.
type TransitionResult struct {
	BuildingID     uuid.UUID
	SubstageID     uuid.UUID
	From           domain.WorkStatus
	To             domain.WorkStatus
	StageStatus    domain.WorkStatus
	BuildingStatus domain.WorkStatus
}

// substageTransition loads the building owning a sub-stage, applies op and
// saves the graph with its events.
type substageTransition struct {
	deps Deps
	op   string
}

func (t substageTransition) run(
	ctx context.Context,
	substageID, correlationID uuid.UUID,
	apply func(b *domain.Building) error,
) (*TransitionResult, error) {
	result, err := sharedApplication.WithUnitOfWorkResult(ctx, t.deps.UoW, func(txCtx context.Context) (*TransitionResult, error) {
		building, err := t.deps.Buildings.FindBySubstage(txCtx, substageID)
		if err != nil {
			return nil, err
		}
		stage, sub, err := building.FindSubstage(substageID)
		if err != nil {
			return nil, err
		}

		from := sub.Status()
		if err := apply(building); err != nil {
			return nil, err
		}

		if err := t.deps.Buildings.Save(txCtx, building); err != nil {
			return nil, err
		}
		if err := saveEvents(txCtx, t.deps.Outbox, building, correlationID); err != nil {
			return nil, err
		}

		return &TransitionResult{
			BuildingID:     building.ID(),
			SubstageID:     sub.ID(),
			From:           from,
			To:             sub.Status(),
			StageStatus:    stage.Status(),
			BuildingStatus: building.Status(),
		}, nil
	})
	if err != nil {
		t.deps.Metrics.Counter(observability.MetricOperationErrors, 1, observability.T("operation", t.op))
		return nil, err
	}

	t.deps.Logger.InfoContext(ctx, "sub-stage transitioned",
		"operation", t.op,
		"building_id", result.BuildingID,
		"substage_id", result.SubstageID,
		"from", result.From,
		"to", result.To,
	)
	t.deps.Metrics.Counter(observability.MetricSubstageTransitions, 1, observability.T("to", result.To.String()))
	invalidate(ctx, t.deps, result.BuildingID)
	return result, nil
}

func invalidate(ctx context.Context, deps Deps, buildingID uuid.UUID) {
	if err := deps.Cache.Invalidate(ctx, buildingID); err != nil {
		deps.Logger.WarnContext(ctx, "failed to invalidate progress cache", "building_id", buildingID, "error", err)
	}
}
