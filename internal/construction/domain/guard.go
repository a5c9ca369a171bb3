package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// CanStart reports whether the sub-stage may move to ongoing. Rules are
// checked in order:
//  1. no other sub-stage in the building is ongoing
//  2. the previous sub-stage of the same stage is finished or paid
//  3. every earlier stage of the building is finished or paid
//  4. the sub-stage itself is not started or already ongoing
func CanStart(b *Building, substageID uuid.UUID) error {
	stage, target, err := b.FindSubstage(substageID)
	if err != nil {
		return err
	}

	for _, st := range b.stages {
		for _, sub := range st.substages {
			if sub.id != target.id && sub.status == StatusOngoing {
				return orderingError("start", target, ErrAnotherSubstageInProgress)
			}
		}
	}

	if target.order > 1 {
		prev := stage.SubstageAt(target.order - 1)
		if prev == nil {
			return fmt.Errorf("stage %s has no sub-stage at position %d: %w", stage.id, target.order-1, ErrSubstageNotFound)
		}
		if !prev.status.IsDone() {
			return orderingError("start", target, ErrPreviousSubstageNotDone)
		}
	}

	if stage.order > 1 {
		for _, st := range b.stages {
			if st.order < stage.order && !st.status.IsDone() {
				return orderingError("start", target, ErrPreviousStageNotDone)
			}
		}
	}

	switch target.status {
	case StatusNotStarted, StatusOngoing:
		return nil
	case StatusFinished, StatusPaid, StatusStopped:
		return orderingError("start", target, ErrInvalidStateForStart)
	default:
		return orderingError("start", target, ErrInvalidStateForStart)
	}
}

// CanFinish reports whether the sub-stage may move to finished.
func CanFinish(s *Substage) error {
	if s.status != StatusOngoing {
		return orderingError("finish", s, ErrOnlyOngoingCanFinish)
	}
	return nil
}

// CanReset reports whether the sub-stage may return to not started.
func CanReset(s *Substage) error {
	if s.status != StatusOngoing {
		return orderingError("reset", s, ErrOnlyOngoingCanReset)
	}
	return nil
}
