package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockBuildingRepo is a mock implementation of domain.BuildingRepository.
type mockBuildingRepo struct {
	mock.Mock
}

func (m *mockBuildingRepo) Save(ctx context.Context, building *domain.Building) error {
	args := m.Called(ctx, building)
	return args.Error(0)
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
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockProjectRepo is a mock implementation of domain.ProjectRepository.
type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
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

// mockMaterialRepo is a mock implementation of domain.MaterialRepository.
type mockMaterialRepo struct {
	mock.Mock
}

func (m *mockMaterialRepo) Save(ctx context.Context, material *domain.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
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

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, batch domain.PaymentBatch, today time.Time) (string, error) {
	args := m.Called(ctx, batch, today)
	return args.String(0), args.Error(1)
}

type recordingInvalidator struct {
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id uuid.UUID) error {
	r.ids = append(r.ids, id)
	return nil
}

type txKey struct{}

var (
	monday  = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	buildings *mockBuildingRepo
	projects  *mockProjectRepo
	materials *mockMaterialRepo
	outbox    *mockOutboxRepo
	uow       *mockUnitOfWork
	cache     *recordingInvalidator
	ctx       context.Context
	txCtx     context.Context
}

func newFixture() *fixture {
	ctx := context.Background()
	return &fixture{
		buildings: new(mockBuildingRepo),
		projects:  new(mockProjectRepo),
		materials: new(mockMaterialRepo),
		outbox:    new(mockOutboxRepo),
		uow:       new(mockUnitOfWork),
		cache:     &recordingInvalidator{},
		ctx:       ctx,
		txCtx:     context.WithValue(ctx, txKey{}, "transaction"),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Buildings: f.buildings,
		Projects:  f.projects,
		Materials: f.materials,
		Outbox:    f.outbox,
		UoW:       f.uow,
		Cache:     f.cache,
	}
}

func (f *fixture) expectCommit() {
	f.uow.On("Begin", f.ctx).Return(f.txCtx, nil)
	f.uow.On("Commit", f.txCtx).Return(nil)
}

func (f *fixture) expectRollback() {
	f.uow.On("Begin", f.ctx).Return(f.txCtx, nil)
	f.uow.On("Rollback", f.txCtx).Return(nil)
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.uow.AssertExpectations(t)
	f.buildings.AssertExpectations(t)
	f.projects.AssertExpectations(t)
	f.materials.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
}

// newBuilding builds a building with one stage holding n sub-stages at labor 100.
func newBuilding(t *testing.T, n int) (*domain.Building, []*domain.Substage) {
	t.Helper()
	b, err := domain.NewBuilding(uuid.New(), "Block A")
	require.NoError(t, err)
	stage, err := b.AddStage("Foundation")
	require.NoError(t, err)
	subs := make([]*domain.Substage, 0, n)
	for i := 0; i < n; i++ {
		s, err := stage.AddSubstage("Step", decimal.NewFromInt(100))
		require.NoError(t, err)
		subs = append(subs, s)
	}
	b.ClearDomainEvents()
	return b, subs
}

// ============ Sub-stage transition Tests ============

func TestStartSubstageHandler_Handle(t *testing.T) {
	t.Run("starts the first sub-stage and cascades", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 2)
		handler := NewStartSubstageHandler(f.deps())

		f.expectCommit()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)
		f.buildings.On("Save", f.txCtx, b).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeySubstageStatusChanged
		})).Return(nil)

		result, err := handler.Handle(f.ctx, StartSubstageCommand{SubstageID: subs[0].ID(), Today: monday})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotStarted, result.From)
		assert.Equal(t, domain.StatusOngoing, result.To)
		assert.Equal(t, domain.StatusOngoing, result.StageStatus)
		assert.Equal(t, domain.StatusOngoing, result.BuildingStatus)
		assert.Empty(t, b.DomainEvents())
		assert.Equal(t, []uuid.UUID{b.ID()}, f.cache.ids)
		f.assertExpectations(t)
	})

	t.Run("rejects out of order start and rolls back", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 2)
		handler := NewStartSubstageHandler(f.deps())

		f.expectRollback()
		f.buildings.On("FindBySubstage", f.txCtx, subs[1].ID()).Return(b, nil)

		result, err := handler.Handle(f.ctx, StartSubstageCommand{SubstageID: subs[1].ID(), Today: monday})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrPreviousSubstageNotDone)
		assert.Equal(t, domain.StatusNotStarted, subs[1].Status())
		assert.Empty(t, f.cache.ids)
		f.buildings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("fails when the sub-stage is unknown", func(t *testing.T) {
		f := newFixture()
		handler := NewStartSubstageHandler(f.deps())
		id := uuid.New()

		f.expectRollback()
		f.buildings.On("FindBySubstage", f.txCtx, id).Return(nil, domain.ErrSubstageNotFound)

		_, err := handler.Handle(f.ctx, StartSubstageCommand{SubstageID: id})

		assert.ErrorIs(t, err, domain.ErrSubstageNotFound)
		f.assertExpectations(t)
	})
}

func TestFinishSubstageHandler_Handle(t *testing.T) {
	t.Run("finishes an ongoing sub-stage", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		require.NoError(t, b.StartSubstage(subs[0].ID(), monday))
		b.ClearDomainEvents()
		handler := NewFinishSubstageHandler(f.deps())

		f.expectCommit()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)
		f.buildings.On("Save", f.txCtx, b).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(f.ctx, FinishSubstageCommand{SubstageID: subs[0].ID(), Today: tuesday})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusFinished, result.To)
		assert.Equal(t, domain.StatusFinished, result.BuildingStatus)
		require.NotNil(t, subs[0].EndDate())
		assert.Equal(t, tuesday, *subs[0].EndDate())
		f.assertExpectations(t)
	})

	t.Run("rejects finishing work that never started", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		handler := NewFinishSubstageHandler(f.deps())

		f.expectRollback()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)

		_, err := handler.Handle(f.ctx, FinishSubstageCommand{SubstageID: subs[0].ID(), Today: tuesday})

		assert.ErrorIs(t, err, domain.ErrOnlyOngoingCanFinish)
		f.assertExpectations(t)
	})
}

func TestResetSubstageHandler_Handle(t *testing.T) {
	f := newFixture()
	b, subs := newBuilding(t, 1)
	require.NoError(t, b.StartSubstage(subs[0].ID(), monday))
	b.ClearDomainEvents()
	handler := NewResetSubstageHandler(f.deps())

	f.expectCommit()
	f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)
	f.buildings.On("Save", f.txCtx, b).Return(nil)
	f.outbox.On("SaveBatch", f.txCtx, mock.Anything).Return(nil)

	result, err := handler.Handle(f.ctx, ResetSubstageCommand{SubstageID: subs[0].ID(), Today: tuesday})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, result.To)
	assert.Nil(t, subs[0].StartDate())
	f.assertExpectations(t)
}

// ============ StopBuildingHandler Tests ============

func TestStopBuildingHandler_Handle(t *testing.T) {
	f := newFixture()
	b, subs := newBuilding(t, 2)
	handler := NewStopBuildingHandler(f.deps())

	f.expectCommit()
	f.buildings.On("FindByID", f.txCtx, b.ID()).Return(b, nil)
	f.buildings.On("Save", f.txCtx, b).Return(nil)
	f.outbox.On("SaveBatch", f.txCtx, mock.Anything).Return(nil)

	err := handler.Handle(f.ctx, StopBuildingCommand{BuildingID: b.ID(), Today: monday})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, b.Status())
	for _, s := range subs {
		assert.Equal(t, domain.StatusStopped, s.Status())
	}
	assert.Equal(t, []uuid.UUID{b.ID()}, f.cache.ids)
	f.assertExpectations(t)
}

// ============ SetLaborCostHandler Tests ============

func TestSetLaborCostHandler_Handle(t *testing.T) {
	t.Run("updates the labor cost", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		handler := NewSetLaborCostHandler(f.deps())

		f.expectCommit()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)
		f.buildings.On("Save", f.txCtx, b).Return(nil)

		err := handler.Handle(f.ctx, SetLaborCostCommand{SubstageID: subs[0].ID(), LaborCost: decimal.NewFromInt(250)})

		require.NoError(t, err)
		assert.True(t, subs[0].LaborCost().Equal(decimal.NewFromInt(250)))
		f.assertExpectations(t)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		handler := NewSetLaborCostHandler(f.deps())

		f.expectRollback()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)

		err := handler.Handle(f.ctx, SetLaborCostCommand{SubstageID: subs[0].ID(), LaborCost: decimal.NewFromInt(-1)})

		assert.ErrorIs(t, err, domain.ErrNegativeLaborCost)
		f.assertExpectations(t)
	})

	t.Run("keeps finished work payable", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		require.NoError(t, b.StartSubstage(subs[0].ID(), monday))
		require.NoError(t, b.FinishSubstage(subs[0].ID(), monday))
		before := subs[0].LaborCost()
		handler := NewSetLaborCostHandler(f.deps())

		f.expectRollback()
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)

		err := handler.Handle(f.ctx, SetLaborCostCommand{SubstageID: subs[0].ID(), LaborCost: decimal.Zero})

		assert.ErrorIs(t, err, domain.ErrLaborCostRequired)
		assert.True(t, subs[0].LaborCost().Equal(before))
		f.buildings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

// ============ RecordMaterialUsageHandler Tests ============

func TestRecordMaterialUsageHandler_Handle(t *testing.T) {
	t.Run("records usage on open work", func(t *testing.T) {
		f := newFixture()
		b, subs := newBuilding(t, 1)
		material, err := domain.NewMaterial("Cement", "bag", decimal.NewFromInt(8), monday)
		require.NoError(t, err)
		handler := NewRecordMaterialUsageHandler(f.deps())

		f.expectCommit()
		f.materials.On("FindByID", f.txCtx, material.ID()).Return(material, nil)
		f.buildings.On("FindBySubstage", f.txCtx, subs[0].ID()).Return(b, nil)
		f.buildings.On("Save", f.txCtx, b).Return(nil)

		result, err := handler.Handle(f.ctx, RecordMaterialUsageCommand{
			SubstageID: subs[0].ID(),
			MaterialID: material.ID(),
			Quantity:   decimal.NewFromInt(12),
			Today:      tuesday,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.UsageID)
		require.Len(t, subs[0].Usages(), 1)
		assert.Equal(t, tuesday, subs[0].Usages()[0].Date())
		f.assertExpectations(t)
	})

	t.Run("fails for an unknown material", func(t *testing.T) {
		f := newFixture()
		handler := NewRecordMaterialUsageHandler(f.deps())
		id := uuid.New()

		f.expectRollback()
		f.materials.On("FindByID", f.txCtx, id).Return(nil, domain.ErrMaterialNotFound)

		_, err := handler.Handle(f.ctx, RecordMaterialUsageCommand{SubstageID: uuid.New(), MaterialID: id, Quantity: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
		f.assertExpectations(t)
	})
}

// ============ Material Tests ============

func TestCreateMaterialHandler_Handle(t *testing.T) {
	f := newFixture()
	handler := NewCreateMaterialHandler(f.deps())

	f.expectCommit()
	f.materials.On("Save", f.txCtx, mock.AnythingOfType("*domain.Material")).Return(nil)

	result, err := handler.Handle(f.ctx, CreateMaterialCommand{
		Name:          "Rebar",
		Unit:          "kg",
		Price:         decimal.RequireFromString("1.20"),
		EffectiveDate: monday,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.MaterialID)
	f.assertExpectations(t)
}

func TestRecordMaterialPriceHandler_Handle(t *testing.T) {
	f := newFixture()
	material, err := domain.NewMaterial("Rebar", "kg", decimal.RequireFromString("1.20"), monday)
	require.NoError(t, err)
	handler := NewRecordMaterialPriceHandler(f.deps())

	f.expectCommit()
	f.materials.On("FindByID", f.txCtx, material.ID()).Return(material, nil)
	f.materials.On("Save", f.txCtx, material).Return(nil)

	err = handler.Handle(f.ctx, RecordMaterialPriceCommand{
		MaterialID:    material.ID(),
		Price:         decimal.RequireFromString("1.35"),
		EffectiveDate: tuesday,
	})

	require.NoError(t, err)
	assert.True(t, material.CurrentPrice().Equal(decimal.RequireFromString("1.35")))
	assert.Len(t, material.History(), 2)
	f.assertExpectations(t)
}

// ============ Project and building Tests ============

func TestCreateProjectHandler_Handle(t *testing.T) {
	t.Run("creates a project", func(t *testing.T) {
		f := newFixture()
		handler := NewCreateProjectHandler(f.deps())

		f.expectCommit()
		f.projects.On("Save", f.txCtx, mock.AnythingOfType("*domain.Project")).Return(nil)

		result, err := handler.Handle(f.ctx, CreateProjectCommand{Name: "Riverside"})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.ProjectID)
		f.assertExpectations(t)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		f := newFixture()
		handler := NewCreateProjectHandler(f.deps())

		f.expectRollback()

		_, err := handler.Handle(f.ctx, CreateProjectCommand{})

		assert.ErrorIs(t, err, domain.ErrEmptyName)
		f.assertExpectations(t)
	})
}

func TestCreateBuildingHandler_Handle(t *testing.T) {
	tmpl := domain.BuildingTemplate{
		Name: "Two storey",
		Stages: []domain.StageTemplate{{
			Name: "Foundation",
			Substages: []domain.SubstageTemplate{
				{Name: "Excavation", LaborCost: decimal.NewFromInt(500)},
				{Name: "Pour", LaborCost: decimal.NewFromInt(800), Materials: []domain.UsageTemplate{
					{Material: "Cement", Quantity: decimal.NewFromInt(40)},
				}},
			},
		}},
	}

	t.Run("instantiates the template at the end of the project", func(t *testing.T) {
		f := newFixture()
		project, err := domain.NewProject("Riverside")
		require.NoError(t, err)
		cement, err := domain.NewMaterial("Cement", "bag", decimal.NewFromInt(8), monday)
		require.NoError(t, err)
		handler := NewCreateBuildingHandler(f.deps())

		f.expectCommit()
		f.projects.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.materials.On("FindByName", f.txCtx, "Cement").Return(cement, nil)
		f.buildings.On("Save", f.txCtx, mock.AnythingOfType("*domain.Building")).Return(nil)

		result, err := handler.Handle(f.ctx, CreateBuildingCommand{ProjectID: project.ID(), Name: "House 1", Template: tmpl, Today: monday})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Position)
		require.Len(t, project.Buildings(), 1)
		b := project.Buildings()[0]
		assert.Equal(t, result.BuildingID, b.ID())
		assert.Equal(t, domain.StatusNotStarted, b.Status())
		require.Len(t, b.Substages(), 2)
		require.Len(t, b.Substages()[1].Usages(), 1)
		assert.Equal(t, cement.ID(), b.Substages()[1].Usages()[0].MaterialID())
		f.assertExpectations(t)
	})

	t.Run("fails when a template material is missing", func(t *testing.T) {
		f := newFixture()
		project, err := domain.NewProject("Riverside")
		require.NoError(t, err)
		handler := NewCreateBuildingHandler(f.deps())

		f.expectRollback()
		f.projects.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.materials.On("FindByName", f.txCtx, "Cement").Return(nil, domain.ErrMaterialNotFound)

		_, err = handler.Handle(f.ctx, CreateBuildingCommand{ProjectID: project.ID(), Template: tmpl})

		assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
		assert.Empty(t, project.Buildings())
		f.assertExpectations(t)
	})
}

func TestDeleteBuildingHandler_Handle(t *testing.T) {
	t.Run("deletes a building without paid work", func(t *testing.T) {
		f := newFixture()
		b, _ := newBuilding(t, 1)
		handler := NewDeleteBuildingHandler(f.deps())

		f.expectCommit()
		f.buildings.On("FindByID", f.txCtx, b.ID()).Return(b, nil)
		f.buildings.On("Delete", f.txCtx, b.ID()).Return(nil)

		require.NoError(t, handler.Handle(f.ctx, DeleteBuildingCommand{BuildingID: b.ID()}))
		f.assertExpectations(t)
	})

	t.Run("refuses when work was paid", func(t *testing.T) {
		f := newFixture()
		project, b, subs := paidReadyProject(t)
		_, err := domain.CommitPayments(project, domain.ResolvePayments(project), tuesday)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPaid, subs[0].Status())
		handler := NewDeleteBuildingHandler(f.deps())

		f.expectRollback()
		f.buildings.On("FindByID", f.txCtx, b.ID()).Return(b, nil)

		err = handler.Handle(f.ctx, DeleteBuildingCommand{BuildingID: b.ID()})

		assert.ErrorIs(t, err, domain.ErrContainsPaidWork)
		f.buildings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

// ============ PayProjectHandler Tests ============

// paidReadyProject returns a project with one building whose first
// sub-stage is finished and second is still open.
func paidReadyProject(t *testing.T) (*domain.Project, *domain.Building, []*domain.Substage) {
	t.Helper()
	project, err := domain.NewProject("Riverside")
	require.NoError(t, err)
	b, subs := newBuilding(t, 2)
	project.AddBuilding(b)
	require.NoError(t, b.StartSubstage(subs[0].ID(), monday))
	require.NoError(t, b.FinishSubstage(subs[0].ID(), monday))
	b.ClearDomainEvents()
	return project, b, subs
}

func TestPayProjectHandler_Handle(t *testing.T) {
	t.Run("renders then commits the batch", func(t *testing.T) {
		f := newFixture()
		project, b, subs := paidReadyProject(t)
		renderer := new(mockRenderer)
		handler := NewPayProjectHandler(f.deps(), renderer)

		f.expectCommit()
		f.projects.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		renderer.On("Render", f.txCtx, mock.AnythingOfType("domain.PaymentBatch"), tuesday).Return("/reports/pay.yaml", nil)
		f.buildings.On("Save", f.txCtx, b).Return(nil)
		f.projects.On("Save", f.txCtx, project).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeySubstageStatusChanged
		})).Return(nil).Once()
		f.outbox.On("SaveBatch", f.txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyPaymentsCommitted
		})).Return(nil).Once()

		result, err := handler.Handle(f.ctx, PayProjectCommand{ProjectID: project.ID(), Today: tuesday})

		require.NoError(t, err)
		assert.Equal(t, 1, result.PaidCount)
		assert.Equal(t, "/reports/pay.yaml", result.ReportPath)
		assert.True(t, result.GrandTotal.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, domain.StatusPaid, subs[0].Status())
		assert.Equal(t, domain.StatusNotStarted, subs[1].Status())
		assert.Equal(t, []uuid.UUID{b.ID()}, f.cache.ids)
		renderer.AssertExpectations(t)
		f.assertExpectations(t)
	})

	t.Run("renderer failure leaves everything unpaid", func(t *testing.T) {
		f := newFixture()
		project, _, subs := paidReadyProject(t)
		renderer := new(mockRenderer)
		handler := NewPayProjectHandler(f.deps(), renderer)
		renderErr := errors.New("disk full")

		f.expectRollback()
		f.projects.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		renderer.On("Render", f.txCtx, mock.Anything, tuesday).Return("", renderErr)

		_, err := handler.Handle(f.ctx, PayProjectCommand{ProjectID: project.ID(), Today: tuesday})

		assert.ErrorIs(t, err, renderErr)
		assert.Equal(t, domain.StatusFinished, subs[0].Status())
		assert.Empty(t, f.cache.ids)
		f.buildings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("empty batch skips rendering", func(t *testing.T) {
		f := newFixture()
		project, err := domain.NewProject("Empty")
		require.NoError(t, err)
		renderer := new(mockRenderer)
		handler := NewPayProjectHandler(f.deps(), renderer)

		f.expectCommit()
		f.projects.On("FindByID", f.txCtx, project.ID()).Return(project, nil)

		result, err := handler.Handle(f.ctx, PayProjectCommand{ProjectID: project.ID(), Today: tuesday})

		require.NoError(t, err)
		assert.True(t, result.Batch.IsEmpty())
		assert.Zero(t, result.PaidCount)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}
