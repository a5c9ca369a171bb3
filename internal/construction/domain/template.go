package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildingTemplate is a building type: the stages, sub-stages and default
// material quantities every new building of that type starts with.
type BuildingTemplate struct {
	Name   string          `yaml:"name"`
	Stages []StageTemplate `yaml:"stages"`
}

// StageTemplate describes one stage of a building type.
type StageTemplate struct {
	Name      string             `yaml:"name"`
	Substages []SubstageTemplate `yaml:"substages"`
}

// SubstageTemplate describes one sub-stage with its default labor cost.
type SubstageTemplate struct {
	Name      string          `yaml:"name"`
	LaborCost decimal.Decimal `yaml:"labor_cost"`
	Materials []UsageTemplate `yaml:"materials"`
}

// UsageTemplate is a default material quantity, referencing the material by name.
type UsageTemplate struct {
	Material string          `yaml:"material"`
	Quantity decimal.Decimal `yaml:"quantity"`
	Notes    string          `yaml:"notes"`
}

// MaterialNames lists the distinct material names the template references.
func (t BuildingTemplate) MaterialNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, st := range t.Stages {
		for _, sub := range st.Substages {
			for _, u := range sub.Materials {
				if !seen[u.Material] {
					seen[u.Material] = true
					names = append(names, u.Material)
				}
			}
		}
	}
	return names
}

// Instantiate clones the template into a new not-started building. Material
// names are resolved through materials. Positions are assigned densely from 1.
func (t BuildingTemplate) Instantiate(projectID uuid.UUID, name string, materials map[string]uuid.UUID, today time.Time) (*Building, error) {
	if name == "" {
		name = t.Name
	}
	b, err := NewBuilding(projectID, name)
	if err != nil {
		return nil, err
	}

	for _, stTmpl := range t.Stages {
		stage, err := b.AddStage(stTmpl.Name)
		if err != nil {
			return nil, err
		}
		for _, subTmpl := range stTmpl.Substages {
			sub, err := stage.AddSubstage(subTmpl.Name, subTmpl.LaborCost)
			if err != nil {
				return nil, fmt.Errorf("sub-stage %q: %w", subTmpl.Name, err)
			}
			for _, u := range subTmpl.Materials {
				materialID, ok := materials[u.Material]
				if !ok {
					return nil, fmt.Errorf("%q: %w", u.Material, ErrUnknownTemplateMaterial)
				}
				if _, err := sub.RecordUsage(materialID, u.Quantity, u.Notes, today); err != nil {
					return nil, fmt.Errorf("sub-stage %q material %q: %w", subTmpl.Name, u.Material, err)
				}
			}
		}
	}
	return b, nil
}
