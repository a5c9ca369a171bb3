package domain

import (
	"sort"

	sharedDomain "github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
)

// Project groups buildings for reporting and batch payment.
type Project struct {
	sharedDomain.BaseAggregateRoot
	name      string
	buildings []*Building
}

// NewProject creates an empty project.
func NewProject(name string) (*Project, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Project{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		name:              name,
		buildings:         []*Building{},
	}, nil
}

func (p *Project) Name() string           { return p.name }
func (p *Project) Buildings() []*Building { return p.buildings }

// AddBuilding attaches a building at the end of the project.
func (p *Project) AddBuilding(b *Building) {
	b.projectID = p.ID()
	b.SetPosition(len(p.buildings) + 1)
	p.buildings = append(p.buildings, b)
	p.Touch()
}

// FindBuilding returns the building with the given ID.
func (p *Project) FindBuilding(id uuid.UUID) (*Building, error) {
	for _, b := range p.buildings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, ErrBuildingNotFound
}

// CanDelete reports whether no building holds paid work.
func (p *Project) CanDelete() bool {
	for _, b := range p.buildings {
		if !b.CanDelete() {
			return false
		}
	}
	return true
}

// RehydrateProject recreates a project from persisted data. Buildings are
// sorted by position.
func RehydrateProject(root sharedDomain.BaseAggregateRoot, name string, buildings []*Building) *Project {
	if buildings == nil {
		buildings = []*Building{}
	}
	sort.SliceStable(buildings, func(i, j int) bool { return buildings[i].position < buildings[j].position })
	return &Project{
		BaseAggregateRoot: root,
		name:              name,
		buildings:         buildings,
	}
}
