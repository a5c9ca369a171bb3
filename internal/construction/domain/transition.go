package domain

import "time"

// ApplyTransition validates and applies a status change to one sub-stage,
// including date bookkeeping and freezing material usage dates. It does not
// check ordering rules or touch ancestors. On error the sub-stage is unchanged.
//
// An existing start date is never moved, so re-applying the current status
// is safe.
func ApplyTransition(s *Substage, to WorkStatus, today time.Time) error {
	if !to.IsValid() {
		return validationError("transition", s, ErrInvalidStatus)
	}
	if to == StatusFinished || to == StatusPaid {
		if !s.laborCost.IsPositive() {
			return validationError("transition", s, ErrLaborCostRequired)
		}
	}
	if to == StatusPaid && s.status != StatusFinished {
		return validationError("transition", s, ErrMustBeFinishedBeforePaid)
	}

	s.status = to
	switch to {
	case StatusNotStarted:
		s.startDate = nil
		s.endDate = nil
	case StatusOngoing:
		if s.startDate == nil {
			s.startDate = dayPtr(today)
		}
		s.endDate = nil
	case StatusFinished, StatusPaid:
		if s.startDate == nil {
			s.startDate = dayPtr(today)
		}
		s.endDate = dayPtr(today)
		s.freezeUsages()
	case StatusStopped:
		if s.startDate == nil {
			s.startDate = dayPtr(today)
		}
		s.endDate = dayPtr(today)
	}
	return nil
}
