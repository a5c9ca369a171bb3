package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// ProjectRepository implements domain.ProjectRepository.
type ProjectRepository struct {
	conn database.Connection
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

// Save upserts the project row. Buildings are saved through BuildingRepository.
func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO projects (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at`,
		p.ID().String(), p.Name(), formatStamp(p.CreatedAt()), formatStamp(p.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// FindByID loads a project with its buildings.
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var rec projectRecord
	err := exec.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id.String()).
		Scan(&rec.id, &rec.name, &rec.createdAt, &rec.updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return r.load(ctx, exec, rec)
}

// List loads every project in creation order.
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `SELECT id, name, created_at, updated_at FROM projects ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var recs []projectRecord
	for rows.Next() {
		var rec projectRecord
		if err := rows.Scan(&rec.id, &rec.name, &rec.createdAt, &rec.updatedAt); err != nil {
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

	projects := make([]*domain.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := r.load(ctx, exec, rec)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

type projectRecord struct {
	id, name, createdAt, updatedAt string
}

func (r *ProjectRepository) load(ctx context.Context, exec database.Executor, rec projectRecord) (*domain.Project, error) {
	root, err := rehydrateRoot(rec.id, rec.createdAt, rec.updatedAt, 0)
	if err != nil {
		return nil, err
	}
	buildings, err := findBuildingsByProject(ctx, exec, root.ID())
	if err != nil {
		return nil, err
	}
	return domain.RehydrateProject(root, rec.name, buildings), nil
}
