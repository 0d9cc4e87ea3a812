package feed

import (
	"testing"

	"github.com/regsync/eozfeed/tracker"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   tracker.Status
		decision tracker.Decision
		want     Status
		ok       bool
	}{
		{"new and undecided", tracker.StatusNew, tracker.DecisionNotDecided, StatusCreated, true},
		{"completed approved", tracker.StatusCompleted, tracker.DecisionApproved, StatusClosed, true},
		{"completed declined", tracker.StatusCompleted, tracker.DecisionDeclined, StatusClosed, true},
		{"cancelled undecided", tracker.StatusCancelled, tracker.DecisionNotDecided, StatusDeleted, true},
		{"cancelled approved", tracker.StatusCancelled, tracker.DecisionApproved, StatusDeleted, true},
		{"new but decided", tracker.StatusNew, tracker.DecisionApproved, "", false},
		{"completed but undecided", tracker.StatusCompleted, tracker.DecisionNotDecided, "", false},
		{"assigned", tracker.StatusAssigned, tracker.DecisionNotDecided, "", false},
		{"unknown status", tracker.Status("archived"), tracker.DecisionApproved, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.status, tt.decision)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}
