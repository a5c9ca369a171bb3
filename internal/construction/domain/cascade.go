package domain

import "time"

// DeriveStatus computes a parent status from its children's statuses.
// First match wins:
//   - all paid: paid
//   - any ongoing: ongoing
//   - all not started: not started
//   - all finished or paid: finished
//
// Anything else, such as finished mixed with stopped, keeps current. So does
// a parent without children.
func DeriveStatus(current WorkStatus, children []WorkStatus) WorkStatus {
	if len(children) == 0 {
		return current
	}

	allPaid, anyOngoing, allNotStarted, allDone := true, false, true, true
	for _, c := range children {
		switch c {
		case StatusPaid:
			allNotStarted = false
		case StatusFinished:
			allPaid, allNotStarted = false, false
		case StatusOngoing:
			anyOngoing = true
			allPaid, allNotStarted, allDone = false, false, false
		case StatusNotStarted:
			allPaid, allDone = false, false
		case StatusStopped:
			allPaid, allNotStarted, allDone = false, false, false
		default:
			return current
		}
	}

	switch {
	case allPaid:
		return StatusPaid
	case anyOngoing:
		return StatusOngoing
	case allNotStarted:
		return StatusNotStarted
	case allDone:
		return StatusFinished
	default:
		return current
	}
}

// RecomputeStage re-derives the stage status from its sub-stages and
// reports whether it changed.
func RecomputeStage(stage *Stage) bool {
	statuses := make([]WorkStatus, len(stage.substages))
	for i, sub := range stage.substages {
		statuses[i] = sub.status
	}
	next := DeriveStatus(stage.status, statuses)
	changed := next != stage.status
	stage.status = next
	return changed
}

// RecomputeBuilding re-derives the building status from its stages and
// reports whether it changed.
func RecomputeBuilding(b *Building) bool {
	statuses := make([]WorkStatus, len(b.stages))
	for i, st := range b.stages {
		statuses[i] = st.status
	}
	next := DeriveStatus(b.status, statuses)
	changed := next != b.status
	b.status = next
	return changed
}

// Cascade recomputes a stage and then its building after a sub-stage change.
func Cascade(b *Building, stage *Stage) {
	b.mustOwn(stage)
	RecomputeStage(stage)
	RecomputeBuilding(b)
}

// StopBuilding halts all work in a building without the ordering rules.
// Not-started and ongoing sub-stages become stopped; finished and paid work
// is kept. Every stage and the building are then forced to stopped.
func StopBuilding(b *Building, today time.Time) {
	if b.status == StatusStopped {
		return
	}
	for _, st := range b.stages {
		for _, sub := range st.substages {
			switch sub.status {
			case StatusNotStarted, StatusOngoing:
				from := sub.status
				// stopped has no preconditions
				_ = ApplyTransition(sub, StatusStopped, today)
				b.recordStatusChange(st, sub, from, today)
			case StatusFinished, StatusPaid, StatusStopped:
			}
		}
		st.force(StatusStopped, today)
	}
	b.status = StatusStopped
	b.AddDomainEvent(NewBuildingStopped(b.ID(), b.projectID, today))
	b.Touch()
}
