package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	sharedApplication "github.com/felixgeelhaar/sitework/internal/shared/application"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportRenderer writes the payment report for a batch and returns where it went.
type ReportRenderer interface {
	Render(ctx context.Context, batch domain.PaymentBatch, today time.Time) (string, error)
}

// PayProjectCommand pays every finished sub-stage of a project.
type PayProjectCommand struct {
	ProjectID     uuid.UUID
	Today         time.Time
	CorrelationID uuid.UUID
}

// PayProjectResult describes a committed payment batch.
type PayProjectResult struct {
	Batch      domain.PaymentBatch
	ReportPath string
	PaidCount  int
	GrandTotal decimal.Decimal
}

// PayProjectHandler handles the PayProjectCommand.
type PayProjectHandler struct {
	deps     Deps
	renderer ReportRenderer
}

// NewPayProjectHandler creates a new PayProjectHandler.
func NewPayProjectHandler(deps Deps, renderer ReportRenderer) *PayProjectHandler {
	return &PayProjectHandler{deps: deps.withDefaults(), renderer: renderer}
}

// Handle resolves, reports and commits the batch in one unit of work. A
// renderer failure aborts before anything is marked paid.
func (h *PayProjectHandler) Handle(ctx context.Context, cmd PayProjectCommand) (*PayProjectResult, error) {
	day := today(cmd.Today)
	var changed []*domain.Building

	result, err := sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*PayProjectResult, error) {
		project, err := h.deps.Projects.FindByID(txCtx, cmd.ProjectID)
		if err != nil {
			return nil, err
		}

		batch := domain.ResolvePayments(project)
		if batch.IsEmpty() {
			return &PayProjectResult{Batch: batch, GrandTotal: decimal.Zero}, nil
		}

		path, err := h.renderer.Render(txCtx, batch, day)
		if err != nil {
			return nil, err
		}

		changed, err = domain.CommitPayments(project, batch, day)
		if err != nil {
			return nil, err
		}

		for _, b := range changed {
			if err := h.deps.Buildings.Save(txCtx, b); err != nil {
				return nil, err
			}
			if err := saveEvents(txCtx, h.deps.Outbox, b, cmd.CorrelationID); err != nil {
				return nil, err
			}
		}
		if err := h.deps.Projects.Save(txCtx, project); err != nil {
			return nil, err
		}
		if err := saveEvents(txCtx, h.deps.Outbox, project, cmd.CorrelationID); err != nil {
			return nil, err
		}

		return &PayProjectResult{
			Batch:      batch,
			ReportPath: path,
			PaidCount:  len(batch.Rows()),
			GrandTotal: batch.GrandTotal,
		}, nil
	})
	if err != nil {
		h.deps.Metrics.Counter(observability.MetricOperationErrors, 1, observability.T("operation", "project.pay"))
		return nil, err
	}

	if result.PaidCount > 0 {
		total, _ := result.GrandTotal.Float64()
		h.deps.Logger.InfoContext(ctx, "payments committed",
			"project_id", cmd.ProjectID,
			"substages", result.PaidCount,
			"grand_total", result.GrandTotal.StringFixed(2),
			"report", result.ReportPath,
		)
		h.deps.Metrics.Counter(observability.MetricPaymentsCommitted, int64(result.PaidCount))
		h.deps.Metrics.Histogram(observability.MetricPaymentBatchTotal, total)
	}
	for _, b := range changed {
		invalidate(ctx, h.deps, b.ID())
	}
	return result, nil
}
