package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBuildingRepo struct {
	mock.Mock
}

func (m *mockBuildingRepo) Save(ctx context.Context, building *domain.Building) error {
	return m.Called(ctx, building).Error(0)
}

func (m *mockBuildingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *mockBuildingRepo) FindBySubstage(ctx context.Context, substageID uuid.UUID) (*domain.Building, error) {
	args := m.Called(ctx, substageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *mockBuildingRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Building, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Building), args.Error(1)
}

func (m *mockBuildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, project *domain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

type mockMaterialRepo struct {
	mock.Mock
}

func (m *mockMaterialRepo) Save(ctx context.Context, material *domain.Material) error {
	return m.Called(ctx, material).Error(0)
}

func (m *mockMaterialRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockMaterialRepo) FindByName(ctx context.Context, name string) (*domain.Material, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *mockMaterialRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Material, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Material), args.Error(1)
}

func (m *mockMaterialRepo) List(ctx context.Context) ([]*domain.Material, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Material), args.Error(1)
}

type mockProgressCache struct {
	mock.Mock
}

func (m *mockProgressCache) Get(ctx context.Context, id uuid.UUID) (*BuildingProgressDTO, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*BuildingProgressDTO), args.Bool(1), args.Error(2)
}

func (m *mockProgressCache) Set(ctx context.Context, progress *BuildingProgressDTO) error {
	return m.Called(ctx, progress).Error(0)
}

var (
	lastWeek = time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	monday   = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	tuesday  = time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
)

// newBuilding builds a building with stages of the given sizes, labor 100 each.
func newBuilding(t *testing.T, layout ...int) *domain.Building {
	t.Helper()
	b, err := domain.NewBuilding(uuid.New(), "Block A")
	require.NoError(t, err)
	for _, n := range layout {
		stage, err := b.AddStage("Stage")
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			_, err := stage.AddSubstage("Step", decimal.NewFromInt(100))
			require.NoError(t, err)
		}
	}
	return b
}

// ============ GetBuildingProgressHandler Tests ============

func TestGetBuildingProgressHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("computes progress on cache miss and stores it", func(t *testing.T) {
		repo := new(mockBuildingRepo)
		cache := new(mockProgressCache)
		metrics := observability.NewInMemoryMetrics()
		handler := NewGetBuildingProgressHandler(repo, cache, nil).WithMetrics(metrics)

		b := newBuilding(t, 2, 1)
		first := b.Stages()[0].Substages()[0]
		require.NoError(t, b.StartSubstage(first.ID(), monday))
		require.NoError(t, b.FinishSubstage(first.ID(), monday))

		cache.On("Get", ctx, b.ID()).Return(nil, false, nil)
		repo.On("FindByID", ctx, b.ID()).Return(b, nil)
		cache.On("Set", ctx, mock.AnythingOfType("*queries.BuildingProgressDTO")).Return(nil)

		dto, err := handler.Handle(ctx, GetBuildingProgressQuery{BuildingID: b.ID()})

		require.NoError(t, err)
		assert.Equal(t, "ongoing", dto.Status)
		require.Len(t, dto.Stages, 2)
		assert.InDelta(t, 0.5, dto.Stages[0].Progress, 1e-9)
		assert.InDelta(t, 0.0, dto.Stages[1].Progress, 1e-9)
		assert.Equal(t, 25, dto.Percent)
		assert.Equal(t, "finished", dto.Stages[0].Substages[0].Status)
		assert.Equal(t, "100.00", dto.Stages[0].Substages[0].LaborCost)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheMisses))
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("serves a cache hit without loading", func(t *testing.T) {
		repo := new(mockBuildingRepo)
		cache := new(mockProgressCache)
		metrics := observability.NewInMemoryMetrics()
		handler := NewGetBuildingProgressHandler(repo, cache, nil).WithMetrics(metrics)
		id := uuid.New()
		cached := &BuildingProgressDTO{ID: id, Percent: 40}

		cache.On("Get", ctx, id).Return(cached, true, nil)

		dto, err := handler.Handle(ctx, GetBuildingProgressQuery{BuildingID: id})

		require.NoError(t, err)
		assert.Same(t, cached, dto)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHits))
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the repository when the cache fails", func(t *testing.T) {
		repo := new(mockBuildingRepo)
		cache := new(mockProgressCache)
		handler := NewGetBuildingProgressHandler(repo, cache, nil)
		b := newBuilding(t, 1)

		cache.On("Get", ctx, b.ID()).Return(nil, false, errors.New("connection refused"))
		repo.On("FindByID", ctx, b.ID()).Return(b, nil)
		cache.On("Set", ctx, mock.Anything).Return(errors.New("connection refused"))

		dto, err := handler.Handle(ctx, GetBuildingProgressQuery{BuildingID: b.ID()})

		require.NoError(t, err)
		assert.Equal(t, 0, dto.Percent)
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := new(mockBuildingRepo)
		handler := NewGetBuildingProgressHandler(repo, nil, nil)
		id := uuid.New()

		repo.On("FindByID", ctx, id).Return(nil, domain.ErrBuildingNotFound)

		_, err := handler.Handle(ctx, GetBuildingProgressQuery{BuildingID: id})

		assert.ErrorIs(t, err, domain.ErrBuildingNotFound)
	})
}

// ============ ListBuildingsHandler Tests ============

func TestListBuildingsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockBuildingRepo)
	handler := NewListBuildingsHandler(repo)
	projectID := uuid.New()

	done := newBuilding(t, 1)
	s := done.Substages()[0]
	require.NoError(t, done.StartSubstage(s.ID(), monday))
	require.NoError(t, done.FinishSubstage(s.ID(), monday))
	done.SetPosition(1)
	fresh := newBuilding(t, 1)
	fresh.SetPosition(2)

	repo.On("FindByProject", ctx, projectID).Return([]*domain.Building{done, fresh}, nil)

	dtos, err := handler.Handle(ctx, ListBuildingsQuery{ProjectID: projectID})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, 100, dtos[0].Percent)
	assert.Equal(t, "finished", dtos[0].Status)
	assert.Equal(t, 0, dtos[1].Percent)
	assert.Equal(t, 2, dtos[1].Position)
}

// ============ Project query Tests ============

func TestGetProjectProgressHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProjectRepo)
	handler := NewGetProjectProgressHandler(repo)

	project, err := domain.NewProject("Riverside")
	require.NoError(t, err)
	done := newBuilding(t, 1)
	project.AddBuilding(done)
	project.AddBuilding(newBuilding(t, 1))
	s := done.Substages()[0]
	require.NoError(t, done.StartSubstage(s.ID(), monday))
	require.NoError(t, done.FinishSubstage(s.ID(), monday))

	repo.On("FindByID", ctx, project.ID()).Return(project, nil)

	dto, err := handler.Handle(ctx, GetProjectProgressQuery{ProjectID: project.ID()})

	require.NoError(t, err)
	assert.Equal(t, "Riverside", dto.Name)
	assert.Equal(t, 50, dto.Percent)
	assert.Len(t, dto.Buildings, 2)
}

func TestListProjectsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProjectRepo)
	handler := NewListProjectsHandler(repo)

	empty, err := domain.NewProject("Empty")
	require.NoError(t, err)
	repo.On("List", ctx).Return([]*domain.Project{empty}, nil)

	dtos, err := handler.Handle(ctx)

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, 0, dtos[0].Percent)
	assert.Empty(t, dtos[0].Buildings)
}

// ============ PreviewPaymentsHandler Tests ============

func TestPreviewPaymentsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProjectRepo)
	handler := NewPreviewPaymentsHandler(repo)

	project, err := domain.NewProject("Riverside")
	require.NoError(t, err)
	b := newBuilding(t, 2)
	project.AddBuilding(b)
	first := b.Substages()[0]
	require.NoError(t, b.StartSubstage(first.ID(), monday))
	require.NoError(t, b.FinishSubstage(first.ID(), monday))

	repo.On("FindByID", ctx, project.ID()).Return(project, nil)

	batch, err := handler.Handle(ctx, PreviewPaymentsQuery{ProjectID: project.ID()})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID()}, batch.SubstageIDs())
	assert.True(t, batch.GrandTotal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.StatusFinished, first.Status(), "preview must not pay")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// ============ GetSubstageCostHandler Tests ============

func TestGetSubstageCostHandler_Handle(t *testing.T) {
	ctx := context.Background()

	newCement := func(t *testing.T) *domain.Material {
		t.Helper()
		m, err := domain.NewMaterial("Cement", "bag", decimal.NewFromInt(10), lastWeek)
		require.NoError(t, err)
		require.NoError(t, m.RecordPrice(decimal.NewFromInt(12), tuesday))
		return m
	}

	t.Run("finished work keeps the price of its end date", func(t *testing.T) {
		buildings := new(mockBuildingRepo)
		materials := new(mockMaterialRepo)
		handler := NewGetSubstageCostHandler(buildings, materials)
		cement := newCement(t)

		b := newBuilding(t, 1)
		s := b.Substages()[0]
		require.NoError(t, b.StartSubstage(s.ID(), monday))
		_, err := s.RecordUsage(cement.ID(), decimal.NewFromInt(3), "", monday)
		require.NoError(t, err)
		require.NoError(t, b.FinishSubstage(s.ID(), monday))

		buildings.On("FindBySubstage", ctx, s.ID()).Return(b, nil)
		materials.On("FindByIDs", ctx, []uuid.UUID{cement.ID()}).
			Return(map[uuid.UUID]*domain.Material{cement.ID(): cement}, nil)

		dto, err := handler.Handle(ctx, GetSubstageCostQuery{SubstageID: s.ID()})

		require.NoError(t, err)
		assert.True(t, dto.Frozen)
		assert.Equal(t, "finished", dto.Status)
		assert.True(t, dto.Materials.Equal(decimal.NewFromInt(30)))
		assert.True(t, dto.Total().Equal(decimal.NewFromInt(130)))
	})

	t.Run("open work uses the current price", func(t *testing.T) {
		buildings := new(mockBuildingRepo)
		materials := new(mockMaterialRepo)
		handler := NewGetSubstageCostHandler(buildings, materials)
		cement := newCement(t)

		b := newBuilding(t, 1)
		s := b.Substages()[0]
		require.NoError(t, b.StartSubstage(s.ID(), monday))
		_, err := s.RecordUsage(cement.ID(), decimal.NewFromInt(3), "", monday)
		require.NoError(t, err)

		buildings.On("FindBySubstage", ctx, s.ID()).Return(b, nil)
		materials.On("FindByIDs", ctx, []uuid.UUID{cement.ID()}).
			Return(map[uuid.UUID]*domain.Material{cement.ID(): cement}, nil)

		dto, err := handler.Handle(ctx, GetSubstageCostQuery{SubstageID: s.ID()})

		require.NoError(t, err)
		assert.False(t, dto.Frozen)
		assert.True(t, dto.Materials.Equal(decimal.NewFromInt(36)))
	})

	t.Run("labor only skips the material lookup", func(t *testing.T) {
		buildings := new(mockBuildingRepo)
		materials := new(mockMaterialRepo)
		handler := NewGetSubstageCostHandler(buildings, materials)
		b := newBuilding(t, 1)
		s := b.Substages()[0]

		buildings.On("FindBySubstage", ctx, s.ID()).Return(b, nil)

		dto, err := handler.Handle(ctx, GetSubstageCostQuery{SubstageID: s.ID()})

		require.NoError(t, err)
		assert.True(t, dto.Total().Equal(decimal.NewFromInt(100)))
		materials.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})
}

// ============ Material query Tests ============

func TestGetMaterialHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockMaterialRepo)
	handler := NewGetMaterialHandler(repo)

	m, err := domain.NewMaterial("Rebar", "kg", decimal.RequireFromString("1.20"), lastWeek)
	require.NoError(t, err)
	require.NoError(t, m.RecordPrice(decimal.RequireFromString("1.35"), monday))

	repo.On("FindByName", ctx, "Rebar").Return(m, nil)

	dto, err := handler.Handle(ctx, GetMaterialQuery{Name: "Rebar"})

	require.NoError(t, err)
	assert.Equal(t, m.ID(), dto.ID)
	require.Len(t, dto.History, 2)
	require.NotNil(t, dto.History[0].EndDate)
	assert.Equal(t, monday.AddDate(0, 0, -1), *dto.History[0].EndDate)
	assert.Nil(t, dto.History[1].EndDate)
}
