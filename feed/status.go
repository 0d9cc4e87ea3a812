// Package feed derives the EOZ reconciliation views from the task
// tracker: a normalized status per task and the set of accountable
// members per task.
package feed

import "github.com/regsync/eozfeed/tracker"

// Status is the normalized task status the external registry understands.
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusClosed  Status = "CLOSED"
	StatusDeleted Status = "DELETED"
)

// NormalizeStatus maps a task's internal lifecycle pair onto the
// external status. The second return is false when no rule matches; the
// caller must surface that as an explicit null, never substitute one of
// the defined values.
func NormalizeStatus(status tracker.Status, decision tracker.Decision) (Status, bool) {
	switch {
	case status == tracker.StatusNew && decision == tracker.DecisionNotDecided:
		return StatusCreated, true
	case status == tracker.StatusCompleted && decision != tracker.DecisionNotDecided:
		return StatusClosed, true
	case status == tracker.StatusCancelled:
		return StatusDeleted, true
	}
	return "", false
}
