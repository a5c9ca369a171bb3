package queries

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
)

// ProgressCache stores rendered building progress between writes.
type ProgressCache interface {
	Get(ctx context.Context, buildingID uuid.UUID) (*BuildingProgressDTO, bool, error)
	Set(ctx context.Context, progress *BuildingProgressDTO) error
}

// GetBuildingProgressQuery asks for the progress tree of a building.
type GetBuildingProgressQuery struct {
	BuildingID uuid.UUID
}

// GetBuildingProgressHandler handles the GetBuildingProgressQuery.
type GetBuildingProgressHandler struct {
	buildings domain.BuildingRepository
	cache     ProgressCache
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewGetBuildingProgressHandler creates a new GetBuildingProgressHandler.
// cache may be nil.
func NewGetBuildingProgressHandler(buildings domain.BuildingRepository, cache ProgressCache, logger *slog.Logger) *GetBuildingProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetBuildingProgressHandler{
		buildings: buildings,
		cache:     cache,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics records cache hits and misses on m.
func (h *GetBuildingProgressHandler) WithMetrics(m observability.Metrics) *GetBuildingProgressHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the GetBuildingProgressQuery. Cache errors fall through to
// the repository.
func (h *GetBuildingProgressHandler) Handle(ctx context.Context, query GetBuildingProgressQuery) (*BuildingProgressDTO, error) {
	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, query.BuildingID)
		if err != nil {
			h.logger.WarnContext(ctx, "progress cache read failed", "building_id", query.BuildingID, "error", err)
		} else if ok {
			h.metrics.Counter(observability.MetricCacheHits, 1)
			return cached, nil
		}
		h.metrics.Counter(observability.MetricCacheMisses, 1)
	}

	building, err := h.buildings.FindByID(ctx, query.BuildingID)
	if err != nil {
		return nil, err
	}
	dto := toBuildingProgressDTO(building)

	if h.cache != nil {
		if err := h.cache.Set(ctx, dto); err != nil {
			h.logger.WarnContext(ctx, "progress cache write failed", "building_id", query.BuildingID, "error", err)
		}
	}
	return dto, nil
}
