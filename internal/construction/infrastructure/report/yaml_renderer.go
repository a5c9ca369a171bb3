// Package report writes payment reports before a batch is committed.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

// Document is the YAML shape of a payment report.
type Document struct {
	Project    string            `yaml:"project" json:"project"`
	ProjectID  string            `yaml:"project_id" json:"project_id"`
	Date       string            `yaml:"date" json:"date"`
	Buildings  []BuildingSection `yaml:"buildings" json:"buildings"`
	GrandTotal string            `yaml:"grand_total" json:"grand_total"`
}

// BuildingSection lists the payable stages of one building.
type BuildingSection struct {
	Name     string         `yaml:"name" json:"name"`
	Stages   []StageSection `yaml:"stages" json:"stages"`
	Subtotal string         `yaml:"subtotal" json:"subtotal"`
}

// StageSection lists the payable sub-stages of one stage.
type StageSection struct {
	Name     string `yaml:"name" json:"name"`
	Rows     []Row  `yaml:"rows" json:"rows"`
	Subtotal string `yaml:"subtotal" json:"subtotal"`
}

// Row is one paid sub-stage.
type Row struct {
	Substage  string `yaml:"substage" json:"substage"`
	LaborCost string `yaml:"labor_cost" json:"labor_cost"`
}

// NewDocument lays out a batch for rendering. Amounts keep two decimals.
func NewDocument(batch domain.PaymentBatch, today time.Time) Document {
	doc := Document{
		Project:    batch.ProjectName,
		ProjectID:  batch.ProjectID.String(),
		Date:       domain.Day(today).Format(domain.DateLayout),
		Buildings:  make([]BuildingSection, 0, len(batch.Buildings)),
		GrandTotal: batch.GrandTotal.StringFixed(2),
	}
	for _, bp := range batch.Buildings {
		section := BuildingSection{Name: bp.BuildingName, Subtotal: bp.Subtotal.StringFixed(2)}
		for _, sp := range bp.Stages {
			stage := StageSection{Name: sp.StageName, Subtotal: sp.Subtotal.StringFixed(2)}
			for _, row := range sp.Rows {
				stage.Rows = append(stage.Rows, Row{Substage: row.SubstageName, LaborCost: row.LaborCost.StringFixed(2)})
			}
			section.Stages = append(section.Stages, stage)
		}
		doc.Buildings = append(doc.Buildings, section)
	}
	return doc
}

// YAMLRenderer writes one YAML file per committed batch into a directory.
type YAMLRenderer struct {
	dir string
	now func() time.Time
}

// NewYAMLRenderer creates a renderer writing into dir.
func NewYAMLRenderer(dir string) *YAMLRenderer {
	return &YAMLRenderer{dir: dir, now: time.Now}
}

// Render writes the report and returns its path.
func (r *YAMLRenderer) Render(ctx context.Context, batch domain.PaymentBatch, today time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(NewDocument(batch, today))
	if err != nil {
		return "", fmt.Errorf("failed to encode payment report: %w", err)
	}

	name := fmt.Sprintf("payment-%s-%s.yaml", batch.ProjectID.String()[:8], r.now().UTC().Format("20060102T150405.000000000"))
	path, err := security.WriteFileInDir(name, r.dir, data)
	if err != nil {
		return "", fmt.Errorf("failed to write payment report: %w", err)
	}
	return path, nil
}
