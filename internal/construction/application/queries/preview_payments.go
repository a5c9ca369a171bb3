package queries

import (
	"context"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/google/uuid"
)

// PreviewPaymentsQuery asks what paying a project would cover.
type PreviewPaymentsQuery struct {
	ProjectID uuid.UUID
}

// PreviewPaymentsHandler resolves a payment batch without committing it.
type PreviewPaymentsHandler struct {
	projects domain.ProjectRepository
}

// NewPreviewPaymentsHandler creates a new PreviewPaymentsHandler.
func NewPreviewPaymentsHandler(projects domain.ProjectRepository) *PreviewPaymentsHandler {
	return &PreviewPaymentsHandler{projects: projects}
}

// Handle executes the PreviewPaymentsQuery.
func (h *PreviewPaymentsHandler) Handle(ctx context.Context, query PreviewPaymentsQuery) (domain.PaymentBatch, error) {
	project, err := h.projects.FindByID(ctx, query.ProjectID)
	if err != nil {
		return domain.PaymentBatch{}, err
	}
	return domain.ResolvePayments(project), nil
}
