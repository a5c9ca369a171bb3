package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// MaterialRepository implements domain.MaterialRepository.
type MaterialRepository struct {
	conn database.Connection
}

// NewMaterialRepository creates a new material repository.
func NewMaterialRepository(conn database.Connection) *MaterialRepository {
	return &MaterialRepository{conn: conn}
}

// Save upserts the material and replaces its price history.
func (r *MaterialRepository) Save(ctx context.Context, m *domain.Material) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx, `
		INSERT INTO materials (id, name, unit, current_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			unit = excluded.unit,
			current_price = excluded.current_price,
			updated_at = excluded.updated_at`,
		m.ID().String(), m.Name(), m.Unit(), m.CurrentPrice().String(),
		formatStamp(m.CreatedAt()), formatStamp(m.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to save material: %w", err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM material_prices WHERE material_id = ?`, m.ID().String()); err != nil {
		return fmt.Errorf("failed to clear price history: %w", err)
	}
	for _, iv := range m.History() {
		start := iv.StartDate
		_, err := exec.Exec(ctx,
			`INSERT INTO material_prices (material_id, start_date, end_date, price) VALUES (?, ?, ?, ?)`,
			m.ID().String(), formatDay(&start).String, formatDay(iv.EndDate), iv.PricePerUnit.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save price interval: %w", err)
		}
	}
	return nil
}

const materialColumns = `id, name, unit, current_price, created_at, updated_at`

// FindByID loads a material with its price history.
func (r *MaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	return r.findOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ?`, id.String())
}

// FindByName loads the oldest material with the given name.
func (r *MaterialRepository) FindByName(ctx context.Context, name string) (*domain.Material, error) {
	return r.findOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE name = ? ORDER BY created_at LIMIT 1`, name)
}

// FindByIDs loads the given materials keyed by ID. Unknown IDs are absent.
func (r *MaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Material, error) {
	out := make(map[uuid.UUID]*domain.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	materials, err := r.findMany(ctx, `SELECT `+materialColumns+` FROM materials WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, m := range materials {
		out[m.ID()] = m
	}
	return out, nil
}

// List loads every material ordered by name.
func (r *MaterialRepository) List(ctx context.Context) ([]*domain.Material, error) {
	return r.findMany(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY name`)
}

type materialRecord struct {
	id, name, unit, price, createdAt, updatedAt string
}

func scanMaterial(row database.Row) (materialRecord, error) {
	var rec materialRecord
	err := row.Scan(&rec.id, &rec.name, &rec.unit, &rec.price, &rec.createdAt, &rec.updatedAt)
	return rec, err
}

func (r *MaterialRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Material, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rec, err := scanMaterial(exec.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return r.load(ctx, exec, rec)
}

func (r *MaterialRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Material, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	var recs []materialRecord
	for rows.Next() {
		rec, err := scanMaterial(rows)
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
	if err := rows.Close(); err != nil {
		return nil, err
	}

	materials := make([]*domain.Material, 0, len(recs))
	for _, rec := range recs {
		m, err := r.load(ctx, exec, rec)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, nil
}

func (r *MaterialRepository) load(ctx context.Context, exec database.Executor, rec materialRecord) (*domain.Material, error) {
	root, err := rehydrateRoot(rec.id, rec.createdAt, rec.updatedAt, 0)
	if err != nil {
		return nil, err
	}
	current, err := parseDecimal(rec.price)
	if err != nil {
		return nil, err
	}

	rows, err := exec.Query(ctx,
		`SELECT start_date, end_date, price FROM material_prices WHERE material_id = ? ORDER BY start_date`, rec.id)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	defer rows.Close()

	var history []domain.PriceInterval
	for rows.Next() {
		var (
			start, price string
			end          sql.NullString
		)
		if err := rows.Scan(&start, &end, &price); err != nil {
			return nil, err
		}
		startDate, err := domain.ParseDay(start)
		if err != nil {
			return nil, err
		}
		endDate, err := parseNullDay(end)
		if err != nil {
			return nil, err
		}
		p, err := parseDecimal(price)
		if err != nil {
			return nil, err
		}
		history = append(history, domain.PriceInterval{StartDate: startDate, EndDate: endDate, PricePerUnit: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.RehydrateMaterial(root, rec.name, rec.unit, current, history), nil
}
