package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// BuildingRepository implements domain.BuildingRepository.
type BuildingRepository struct {
	conn database.Connection
}

// NewBuildingRepository creates a new building repository.
func NewBuildingRepository(conn database.Connection) *BuildingRepository {
	return &BuildingRepository{conn: conn}
}

// Save upserts the building row and its whole graph. Usages of each
// sub-stage are replaced.
func (r *BuildingRepository) Save(ctx context.Context, b *domain.Building) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx, `
		INSERT INTO buildings (id, project_id, name, status, position, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			position = excluded.position,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		b.ID().String(), b.ProjectID().String(), b.Name(), b.Status().String(), b.Position(),
		b.Version(), formatStamp(b.CreatedAt()), formatStamp(b.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to save building: %w", err)
	}

	for _, st := range b.Stages() {
		if err := saveStage(ctx, exec, st); err != nil {
			return err
		}
	}
	return nil
}

func saveStage(ctx context.Context, exec database.Executor, st *domain.Stage) error {
	_, err := exec.Exec(ctx, `
		INSERT INTO stages (id, building_id, name, order_index, status, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date`,
		st.ID().String(), st.BuildingID().String(), st.Name(), st.Order(), st.Status().String(),
		formatDay(st.StartDate()), formatDay(st.EndDate()),
	)
	if err != nil {
		return fmt.Errorf("failed to save stage %s: %w", st.ID(), err)
	}

	for _, s := range st.Substages() {
		if err := saveSubstage(ctx, exec, s); err != nil {
			return err
		}
	}
	return nil
}

func saveSubstage(ctx context.Context, exec database.Executor, s *domain.Substage) error {
	_, err := exec.Exec(ctx, `
		INSERT INTO substages (id, stage_id, name, order_index, status, start_date, end_date, labor_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			labor_cost = excluded.labor_cost`,
		s.ID().String(), s.StageID().String(), s.Name(), s.Order(), s.Status().String(),
		formatDay(s.StartDate()), formatDay(s.EndDate()), s.LaborCost().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save sub-stage %s: %w", s.ID(), err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM material_usages WHERE substage_id = ?`, s.ID().String()); err != nil {
		return fmt.Errorf("failed to clear usages of %s: %w", s.ID(), err)
	}
	for _, u := range s.Usages() {
		date := u.Date()
		_, err := exec.Exec(ctx, `
			INSERT INTO material_usages (id, substage_id, material_id, quantity, usage_date, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID().String(), s.ID().String(), u.MaterialID().String(), u.Quantity().String(),
			formatDay(&date).String, u.Notes(),
		)
		if err != nil {
			return fmt.Errorf("failed to save usage %s: %w", u.ID(), err)
		}
	}
	return nil
}

const buildingColumns = `id, project_id, name, status, position, version, created_at, updated_at`

// FindByID loads a building graph.
func (r *BuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Building, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+buildingColumns+` FROM buildings WHERE id = ?`, id.String())

	rec, err := scanBuilding(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	return loadGraph(ctx, exec, rec)
}

// FindBySubstage loads the building owning a sub-stage.
func (r *BuildingRepository) FindBySubstage(ctx context.Context, substageID uuid.UUID) (*domain.Building, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `
		SELECT st.building_id FROM substages s
		JOIN stages st ON st.id = s.stage_id
		WHERE s.id = ?`, substageID.String())

	var buildingID string
	if err := row.Scan(&buildingID); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSubstageNotFound
		}
		return nil, fmt.Errorf("failed to find sub-stage: %w", err)
	}
	id, err := uuid.Parse(buildingID)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByProject loads every building of a project in position order.
func (r *BuildingRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Building, error) {
	return findBuildingsByProject(ctx, database.ExecutorFromContext(ctx, r.conn), projectID)
}

// Delete removes a building and, through cascades, its graph. Buildings
// holding paid work are refused.
func (r *BuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var paid int
	err := exec.QueryRow(ctx, `
		SELECT COUNT(*) FROM substages s
		JOIN stages st ON st.id = s.stage_id
		WHERE st.building_id = ? AND s.status = ?`,
		id.String(), domain.StatusPaid.String(),
	).Scan(&paid)
	if err != nil {
		return fmt.Errorf("failed to check paid work: %w", err)
	}
	if paid > 0 {
		return domain.ErrContainsPaidWork
	}

	res, err := exec.Exec(ctx, `DELETE FROM buildings WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete building: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrBuildingNotFound
	}
	return nil
}

func findBuildingsByProject(ctx context.Context, exec database.Executor, projectID uuid.UUID) ([]*domain.Building, error) {
	rows, err := exec.Query(ctx,
		`SELECT `+buildingColumns+` FROM buildings WHERE project_id = ? ORDER BY position, created_at`,
		projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}

	var recs []buildingRecord
	for rows.Next() {
		rec, err := scanBuilding(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// children are loaded on the same connection, so the cursor must be closed first
	if err := rows.Close(); err != nil {
		return nil, err
	}

	buildings := make([]*domain.Building, 0, len(recs))
	for _, rec := range recs {
		b, err := loadGraph(ctx, exec, rec)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

type buildingRecord struct {
	id, projectID, name, status string
	position, version           int
	createdAt, updatedAt        string
}

func scanBuilding(row database.Row) (buildingRecord, error) {
	var rec buildingRecord
	err := row.Scan(&rec.id, &rec.projectID, &rec.name, &rec.status, &rec.position, &rec.version, &rec.createdAt, &rec.updatedAt)
	return rec, err
}

// loadGraph reads the stages, sub-stages and usages of a building.
func loadGraph(ctx context.Context, exec database.Executor, rec buildingRecord) (*domain.Building, error) {
	root, err := rehydrateRoot(rec.id, rec.createdAt, rec.updatedAt, rec.version)
	if err != nil {
		return nil, err
	}
	projectID, err := uuid.Parse(rec.projectID)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseWorkStatus(rec.status)
	if err != nil {
		return nil, err
	}

	usages, err := loadUsages(ctx, exec, rec.id)
	if err != nil {
		return nil, err
	}
	substages, err := loadSubstages(ctx, exec, rec.id, usages)
	if err != nil {
		return nil, err
	}
	stages, err := loadStages(ctx, exec, rec.id, substages)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateBuilding(root, projectID, rec.name, status, rec.position, stages), nil
}

func loadStages(ctx context.Context, exec database.Executor, buildingID string, substages map[uuid.UUID][]*domain.Substage) ([]*domain.Stage, error) {
	rows, err := exec.Query(ctx, `
		SELECT id, building_id, name, order_index, status, start_date, end_date
		FROM stages WHERE building_id = ? ORDER BY order_index`, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		var (
			id, bID, name, status string
			order                 int
			start, end            sql.NullString
		)
		if err := rows.Scan(&id, &bID, &name, &order, &status, &start, &end); err != nil {
			return nil, err
		}
		stageID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		parent, err := uuid.Parse(bID)
		if err != nil {
			return nil, err
		}
		ws, err := domain.ParseWorkStatus(status)
		if err != nil {
			return nil, err
		}
		startDate, err := parseNullDay(start)
		if err != nil {
			return nil, err
		}
		endDate, err := parseNullDay(end)
		if err != nil {
			return nil, err
		}
		stages = append(stages, domain.RehydrateStage(stageID, parent, name, order, ws, startDate, endDate, substages[stageID]))
	}
	return stages, rows.Err()
}

func loadSubstages(ctx context.Context, exec database.Executor, buildingID string, usages map[uuid.UUID][]*domain.MaterialUsage) (map[uuid.UUID][]*domain.Substage, error) {
	rows, err := exec.Query(ctx, `
		SELECT s.id, s.stage_id, s.name, s.order_index, s.status, s.start_date, s.end_date, s.labor_cost
		FROM substages s
		JOIN stages st ON st.id = s.stage_id
		WHERE st.building_id = ?
		ORDER BY s.order_index`, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-stages: %w", err)
	}
	defer rows.Close()

	byStage := make(map[uuid.UUID][]*domain.Substage)
	for rows.Next() {
		var (
			id, sID, name, status, labor string
			order                        int
			start, end                   sql.NullString
		)
		if err := rows.Scan(&id, &sID, &name, &order, &status, &start, &end, &labor); err != nil {
			return nil, err
		}
		subID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		stageID, err := uuid.Parse(sID)
		if err != nil {
			return nil, err
		}
		ws, err := domain.ParseWorkStatus(status)
		if err != nil {
			return nil, err
		}
		startDate, err := parseNullDay(start)
		if err != nil {
			return nil, err
		}
		endDate, err := parseNullDay(end)
		if err != nil {
			return nil, err
		}
		laborCost, err := parseDecimal(labor)
		if err != nil {
			return nil, err
		}
		sub := domain.RehydrateSubstage(subID, stageID, name, order, ws, startDate, endDate, laborCost, usages[subID])
		byStage[stageID] = append(byStage[stageID], sub)
	}
	return byStage, rows.Err()
}

func loadUsages(ctx context.Context, exec database.Executor, buildingID string) (map[uuid.UUID][]*domain.MaterialUsage, error) {
	rows, err := exec.Query(ctx, `
		SELECT u.id, u.substage_id, u.material_id, u.quantity, u.usage_date, u.notes
		FROM material_usages u
		JOIN substages s ON s.id = u.substage_id
		JOIN stages st ON st.id = s.stage_id
		WHERE st.building_id = ?
		ORDER BY u.usage_date, u.id`, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usages: %w", err)
	}
	defer rows.Close()

	bySubstage := make(map[uuid.UUID][]*domain.MaterialUsage)
	for rows.Next() {
		var (
			id, subID, matID, qty, day string
			notes                      sql.NullString
		)
		if err := rows.Scan(&id, &subID, &matID, &qty, &day, &notes); err != nil {
			return nil, err
		}
		usageID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		substageID, err := uuid.Parse(subID)
		if err != nil {
			return nil, err
		}
		materialID, err := uuid.Parse(matID)
		if err != nil {
			return nil, err
		}
		quantity, err := parseDecimal(qty)
		if err != nil {
			return nil, err
		}
		date, err := domain.ParseDay(day)
		if err != nil {
			return nil, err
		}
		bySubstage[substageID] = append(bySubstage[substageID],
			domain.RehydrateMaterialUsage(usageID, substageID, materialID, quantity, date, notes.String))
	}
	return bySubstage, rows.Err()
}
