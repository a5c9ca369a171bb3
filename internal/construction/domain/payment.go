package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRow is one finished sub-stage awaiting payment.
type PaymentRow struct {
	SubstageID   uuid.UUID
	StageName    string
	SubstageName string
	LaborCost    decimal.Decimal
}

// StagePayment groups the rows of one stage.
type StagePayment struct {
	StageID   uuid.UUID
	StageName string
	Order     int
	Rows      []PaymentRow
	Subtotal  decimal.Decimal
}

// BuildingPayment groups the stages of one building.
type BuildingPayment struct {
	BuildingID   uuid.UUID
	BuildingName string
	Stages       []StagePayment
	Subtotal     decimal.Decimal
}

// PaymentBatch is the resolved set of payable work in a project.
type PaymentBatch struct {
	ProjectID   uuid.UUID
	ProjectName string
	Buildings   []BuildingPayment
	GrandTotal  decimal.Decimal
}

// IsEmpty reports whether nothing is payable.
func (b PaymentBatch) IsEmpty() bool {
	return len(b.Buildings) == 0
}

// Rows flattens the batch in building, stage, sub-stage order.
func (b PaymentBatch) Rows() []PaymentRow {
	var rows []PaymentRow
	for _, bp := range b.Buildings {
		for _, sp := range bp.Stages {
			rows = append(rows, sp.Rows...)
		}
	}
	return rows
}

// SubstageIDs lists the sub-stages the batch pays.
func (b PaymentBatch) SubstageIDs() []uuid.UUID {
	rows := b.Rows()
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.SubstageID
	}
	return ids
}

// ResolvePayments collects every finished sub-stage of the project, grouped
// by building then stage. It does not modify the project.
func ResolvePayments(p *Project) PaymentBatch {
	batch := PaymentBatch{
		ProjectID:   p.ID(),
		ProjectName: p.name,
		GrandTotal:  decimal.Zero,
	}

	for _, b := range p.buildings {
		bp := BuildingPayment{BuildingID: b.ID(), BuildingName: b.name, Subtotal: decimal.Zero}
		for _, st := range b.stages {
			sp := StagePayment{StageID: st.id, StageName: st.name, Order: st.order, Subtotal: decimal.Zero}
			for _, sub := range st.substages {
				if sub.status != StatusFinished {
					continue
				}
				sp.Rows = append(sp.Rows, PaymentRow{
					SubstageID:   sub.id,
					StageName:    st.name,
					SubstageName: sub.name,
					LaborCost:    sub.laborCost,
				})
				sp.Subtotal = sp.Subtotal.Add(sub.laborCost)
			}
			if len(sp.Rows) > 0 {
				bp.Stages = append(bp.Stages, sp)
				bp.Subtotal = bp.Subtotal.Add(sp.Subtotal)
			}
		}
		if len(bp.Stages) > 0 {
			batch.Buildings = append(batch.Buildings, bp)
			batch.GrandTotal = batch.GrandTotal.Add(bp.Subtotal)
		}
	}
	return batch
}

type payTarget struct {
	building *Building
	stage    *Stage
	substage *Substage
}

// CommitPayments marks every sub-stage in batch as paid and recomputes each
// affected stage and building once. The whole batch is checked first, so
// either every row is paid or, on ErrStalePaymentBatch, nothing changes.
// It returns the buildings that changed.
func CommitPayments(p *Project, batch PaymentBatch, today time.Time) ([]*Building, error) {
	if batch.ProjectID != p.ID() {
		return nil, fmt.Errorf("batch for project %s: %w", batch.ProjectID, ErrStalePaymentBatch)
	}

	var targets []payTarget
	seen := make(map[uuid.UUID]bool)
	for _, bp := range batch.Buildings {
		b, err := p.FindBuilding(bp.BuildingID)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", bp.BuildingID, ErrStalePaymentBatch)
		}
		for _, sp := range bp.Stages {
			for _, row := range sp.Rows {
				stage, sub, err := b.FindSubstage(row.SubstageID)
				if err != nil || seen[row.SubstageID] {
					return nil, fmt.Errorf("sub-stage %s: %w", row.SubstageID, ErrStalePaymentBatch)
				}
				if sub.status != StatusFinished || !sub.laborCost.IsPositive() || !sub.laborCost.Equal(row.LaborCost) {
					return nil, fmt.Errorf("sub-stage %s is %s: %w", sub.id, sub.status, ErrStalePaymentBatch)
				}
				seen[row.SubstageID] = true
				targets = append(targets, payTarget{building: b, stage: stage, substage: sub})
			}
		}
	}

	var affected []*Building
	affectedStages := make(map[*Building][]*Stage)
	for _, t := range targets {
		if err := ApplyTransition(t.substage, StatusPaid, today); err != nil {
			// checked above; a failure here is a bug
			panic(err)
		}
		t.building.recordStatusChange(t.stage, t.substage, StatusFinished, today)

		stages, ok := affectedStages[t.building]
		if !ok {
			affected = append(affected, t.building)
		}
		if len(stages) == 0 || stages[len(stages)-1] != t.stage {
			affectedStages[t.building] = append(stages, t.stage)
		}
	}

	for _, b := range affected {
		for _, st := range affectedStages[b] {
			RecomputeStage(st)
		}
		RecomputeBuilding(b)
	}

	if len(targets) > 0 {
		p.AddDomainEvent(NewPaymentsCommitted(p.ID(), batch.SubstageIDs(), batch.GrandTotal, today))
		p.Touch()
	}
	return affected, nil
}
