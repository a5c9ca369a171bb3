// Package template loads building types from YAML.
package template

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTemplate []byte

// ErrEmptyTemplate is returned for a template without stages.
var ErrEmptyTemplate = errors.New("building template has no stages")

// Load reads a building template from a YAML file.
func Load(path string) (domain.BuildingTemplate, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return domain.BuildingTemplate{}, fmt.Errorf("failed to read template: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in single-family house template.
func Default() domain.BuildingTemplate {
	tmpl, err := Parse(defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("embedded template: %v", err))
	}
	return tmpl
}

// Parse decodes and checks a template. Unknown fields are rejected.
func Parse(data []byte) (domain.BuildingTemplate, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tmpl domain.BuildingTemplate
	if err := dec.Decode(&tmpl); err != nil {
		return domain.BuildingTemplate{}, fmt.Errorf("invalid template: %w", err)
	}
	if err := validate(tmpl); err != nil {
		return domain.BuildingTemplate{}, err
	}
	return tmpl, nil
}

func validate(tmpl domain.BuildingTemplate) error {
	if len(tmpl.Stages) == 0 {
		return ErrEmptyTemplate
	}
	for i, st := range tmpl.Stages {
		if st.Name == "" {
			return fmt.Errorf("stage %d: %w", i+1, domain.ErrEmptyName)
		}
		for j, sub := range st.Substages {
			if sub.Name == "" {
				return fmt.Errorf("stage %q sub-stage %d: %w", st.Name, j+1, domain.ErrEmptyName)
			}
			if sub.LaborCost.IsNegative() {
				return fmt.Errorf("sub-stage %q: %w", sub.Name, domain.ErrNegativeLaborCost)
			}
			for _, u := range sub.Materials {
				if u.Quantity.IsNegative() {
					return fmt.Errorf("sub-stage %q material %q: %w", sub.Name, u.Material, domain.ErrNegativeQuantity)
				}
			}
		}
	}
	return nil
}
