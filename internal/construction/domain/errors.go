package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Transition validation errors.
var (
	// ErrLaborCostRequired indicates a sub-stage cannot finish or be paid without labor cost.
	ErrLaborCostRequired = errors.New("labor cost must be greater than zero")

	// ErrMustBeFinishedBeforePaid indicates only finished sub-stages can be paid.
	ErrMustBeFinishedBeforePaid = errors.New("sub-stage must be finished before it is paid")

	// ErrInvalidStatus indicates an unknown work status.
	ErrInvalidStatus = errors.New("invalid work status")
)

// Ordering errors.
var (
	ErrAnotherSubstageInProgress = errors.New("another sub-stage in the building is in progress")
	ErrPreviousSubstageNotDone   = errors.New("previous sub-stage is not finished")
	ErrPreviousStageNotDone      = errors.New("previous stage is not finished")
	ErrInvalidStateForStart      = errors.New("sub-stage cannot be started from its current status")
	ErrOnlyOngoingCanFinish      = errors.New("only an ongoing sub-stage can be finished")
	ErrOnlyOngoingCanReset       = errors.New("only an ongoing sub-stage can be reset")
)

var (
	// ErrProjectNotFound indicates the requested project was not found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrBuildingNotFound indicates the requested building was not found.
	ErrBuildingNotFound = errors.New("building not found")

	// ErrStageNotFound indicates the stage does not belong to the building.
	ErrStageNotFound = errors.New("stage not found")

	// ErrSubstageNotFound indicates the sub-stage does not belong to the building.
	ErrSubstageNotFound = errors.New("sub-stage not found")

	// ErrMaterialNotFound indicates the requested material was not found.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrEmptyName indicates the name cannot be empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNegativeLaborCost indicates a labor cost below zero.
	ErrNegativeLaborCost = errors.New("labor cost cannot be negative")

	// ErrNegativeQuantity indicates a material quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrNegativePrice indicates a material price below zero.
	ErrNegativePrice = errors.New("price cannot be negative")

	// ErrPriceOutOfOrder indicates a price change dated on or before the latest recorded one.
	ErrPriceOutOfOrder = errors.New("price change must be dated after the latest recorded price")

	// ErrSubstagePaid indicates a paid sub-stage can no longer be edited.
	ErrSubstagePaid = errors.New("sub-stage is paid")

	// ErrUsageFrozen indicates materials cannot be recorded on a finished or paid sub-stage.
	ErrUsageFrozen = errors.New("material usage is frozen")

	// ErrStageHasSubstages indicates a stage status is derived and cannot be set directly.
	ErrStageHasSubstages = errors.New("stage status is derived from its sub-stages")

	// ErrContainsPaidWork indicates something paid would be lost by a delete.
	ErrContainsPaidWork = errors.New("contains paid work")

	// ErrStalePaymentBatch indicates the project changed after the batch was resolved.
	ErrStalePaymentBatch = errors.New("payment batch is stale")

	// ErrUnknownTemplateMaterial indicates a template references a material that does not exist.
	ErrUnknownTemplateMaterial = errors.New("template references unknown material")
)

// ErrorKind classifies a WorkflowError.
type ErrorKind string

const (
	// KindValidation marks a rejected transition whose preconditions were not met.
	KindValidation ErrorKind = "validation"
	// KindOrdering marks a request refused by the ordering rules.
	KindOrdering ErrorKind = "ordering"
)

// WorkflowError describes a rejected request on a sub-stage. It unwraps to
// one of the sentinel errors above.
type WorkflowError struct {
	Kind       ErrorKind
	Op         string
	SubstageID uuid.UUID
	Status     WorkStatus
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s sub-stage %s (%s): %v", e.Op, e.SubstageID, e.Status, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func validationError(op string, s *Substage, err error) error {
	return &WorkflowError{Kind: KindValidation, Op: op, SubstageID: s.id, Status: s.status, Err: err}
}

func orderingError(op string, s *Substage, err error) error {
	return &WorkflowError{Kind: KindOrdering, Op: op, SubstageID: s.id, Status: s.status, Err: err}
}
