// Package tracker models the internal task-tracking store the
// reconciliation feed reads from: tasks, their participants, and the
// role/permission associations used for executor fallback.
package tracker

import (
	"context"
	"time"
)

// Status represents the internal lifecycle state of a task.
type Status string

const (
	StatusNew       Status = "new"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Decision is the terminal decision recorded on a task.
type Decision string

const (
	DecisionNotDecided Decision = "not_decided"
	DecisionApproved   Decision = "approved"
	DecisionDeclined   Decision = "declined"
)

// Task is a single record of the upstream task tracker. The feed never
// mutates tasks; it only re-projects them.
type Task struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	URI              string     `json:"uri" yaml:"uri"`
	ShortDescription string     `json:"short_description" yaml:"short_description"`
	Status           Status     `json:"status" yaml:"status"`
	Decision         Decision   `json:"decision" yaml:"decision"`
	ReporterID       string     `json:"reporter_id" yaml:"reporter_id"`
	ExecutorID       string     `json:"executor_id,omitempty" yaml:"executor_id"`     // empty when unassigned
	PermissionID     string     `json:"permission_id,omitempty" yaml:"permission_id"` // empty when no permission requirement
	CreatedAt        time.Time  `json:"created_at" yaml:"created_at"`
	Deadline         *time.Time `json:"deadline,omitempty" yaml:"deadline"`
	UpdatedAt        time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" yaml:"completed_at"`
}

// User is an entry of the user directory. HRID is the identifier the
// external registry knows the user by; users without one are invisible
// to the feed.
type User struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	HRID string `json:"hr_id,omitempty" yaml:"hr_id"`
}

// Role is a named role that permissions can be granted to.
type Role struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Store is the read surface the feed needs from the tracker. All methods
// report only infrastructure failures as errors; missing optional data
// degrades to zero values.
type Store interface {
	// ListTasks returns tasks matching the given filter.
	ListTasks(ctx context.Context, filter Filter) ([]*Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, id string) (*Task, error)

	// UserExternalID returns the external (HR) identifier of a user, or
	// "" when the user is unknown or has none.
	UserExternalID(ctx context.Context, userID string) (string, error)

	// RolesForPermission returns the IDs of all roles the permission is
	// granted to, in no particular order.
	RolesForPermission(ctx context.Context, permissionID string) ([]string, error)
}

// Filter controls which tasks are returned by ListTasks.
type Filter struct {
	Status     *Status `json:"status,omitempty"`
	ReporterID string  `json:"reporter_id,omitempty"`
	ExecutorID string  `json:"executor_id,omitempty"`
	Limit      int     `json:"limit,omitempty"`
	Offset     int     `json:"offset,omitempty"`
}
