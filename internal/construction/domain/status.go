package domain

import "strings"

// WorkStatus is the lifecycle status shared by every level of the hierarchy.
type WorkStatus string

const (
	// StatusNotStarted indicates no work has begun.
	StatusNotStarted WorkStatus = "not_started"
	// StatusOngoing indicates work is in progress. At most one sub-stage per
	// building may be ongoing.
	StatusOngoing WorkStatus = "ongoing"
	// StatusFinished indicates the work is done and awaits payment.
	StatusFinished WorkStatus = "finished"
	// StatusPaid indicates the labor has been paid out.
	StatusPaid WorkStatus = "paid"
	// StatusStopped indicates work was abandoned and will not resume.
	StatusStopped WorkStatus = "stopped"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []WorkStatus{StatusNotStarted, StatusOngoing, StatusFinished, StatusPaid, StatusStopped}

func (s WorkStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value.
func (s WorkStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusOngoing, StatusFinished, StatusPaid, StatusStopped:
		return true
	default:
		return false
	}
}

// IsDone reports whether the work counts as completed for ordering purposes.
func (s WorkStatus) IsDone() bool {
	switch s {
	case StatusFinished, StatusPaid:
		return true
	case StatusNotStarted, StatusOngoing, StatusStopped:
		return false
	default:
		return false
	}
}

// FreezesUsage reports whether material usage dates are pinned to the end
// date while in this status.
func (s WorkStatus) FreezesUsage() bool {
	switch s {
	case StatusFinished, StatusPaid:
		return true
	case StatusNotStarted, StatusOngoing, StatusStopped:
		return false
	default:
		return false
	}
}

// Completion is the progress contribution of a leaf in this status.
// Stopped counts as complete since the work will not resume.
func (s WorkStatus) Completion() float64 {
	switch s {
	case StatusFinished, StatusPaid, StatusStopped:
		return 1.0
	case StatusNotStarted, StatusOngoing:
		return 0.0
	default:
		return 0.0
	}
}

// Label returns a human readable form of the status.
func (s WorkStatus) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusOngoing:
		return "Ongoing"
	case StatusFinished:
		return "Finished"
	case StatusPaid:
		return "Paid"
	case StatusStopped:
		return "Stopped"
	default:
		return string(s)
	}
}

// ParseWorkStatus accepts the stored form as well as spaced or camel-cased
// variants such as "NotStarted" and "not started".
func ParseWorkStatus(s string) (WorkStatus, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range AllStatuses {
		if strings.ReplaceAll(string(status), "_", "") == norm {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}
