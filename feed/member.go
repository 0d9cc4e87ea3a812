package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/regsync/eozfeed/tracker"
)

// MemberRole is the capacity in which a subject participates in a task.
type MemberRole string

const (
	MemberAuthor   MemberRole = "AUTHOR"
	MemberExecutor MemberRole = "EXECUTOR"
)

// SubjectKind distinguishes concrete users from role stand-ins.
type SubjectKind string

const (
	SubjectUser SubjectKind = "USER"
	SubjectRole SubjectKind = "ROLE"
)

// Member is one row of the member feed: a task participant as the
// external registry sees it.
type Member struct {
	TaskID    string      `json:"task_id"`
	Role      MemberRole  `json:"member_role"`
	SubjectID string      `json:"id"`
	Kind      SubjectKind `json:"type"`
}

// ResolveMembers derives the members of a single task: at most one
// AUTHOR and at most one EXECUTOR.
//
// The AUTHOR slot is the reporter, emitted only when the directory knows
// an external identifier for them. The EXECUTOR slot is filled from the
// direct assignee when one exists; an assignee without an external
// identifier leaves the slot empty and suppresses the fallback. Only a
// task with no assignee at all falls back to its permission requirement,
// taking the smallest associated role ID so the feed is reproducible no
// matter how the association store orders its results.
//
// Errors are infrastructure failures from the store; missing optional
// data never produces one.
func ResolveMembers(ctx context.Context, store tracker.Store, t *tracker.Task) ([]Member, error) {
	var members []Member

	authorID, err := store.UserExternalID(ctx, t.ReporterID)
	if err != nil {
		return nil, fmt.Errorf("resolve author of task %s: %w", t.ID, err)
	}
	if authorID != "" {
		members = append(members, Member{
			TaskID:    t.ID,
			Role:      MemberAuthor,
			SubjectID: authorID,
			Kind:      SubjectUser,
		})
	}

	executor, err := resolveExecutor(ctx, store, t)
	if err != nil {
		return nil, err
	}
	if executor != nil {
		members = append(members, *executor)
	}
	return members, nil
}

// resolveExecutor fills the EXECUTOR slot, or returns nil when no
// exportable candidate exists.
func resolveExecutor(ctx context.Context, store tracker.Store, t *tracker.Task) (*Member, error) {
	if t.ExecutorID != "" {
		externalID, err := store.UserExternalID(ctx, t.ExecutorID)
		if err != nil {
			return nil, fmt.Errorf("resolve executor of task %s: %w", t.ID, err)
		}
		if externalID == "" {
			// Assigned but not externally identifiable. The assignment
			// still takes precedence: no role fallback.
			return nil, nil
		}
		return &Member{
			TaskID:    t.ID,
			Role:      MemberExecutor,
			SubjectID: externalID,
			Kind:      SubjectUser,
		}, nil
	}

	if t.PermissionID == "" {
		return nil, nil
	}
	roleIDs, err := store.RolesForPermission(ctx, t.PermissionID)
	if err != nil {
		return nil, fmt.Errorf("resolve fallback role of task %s: %w", t.ID, err)
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}
	sort.Strings(roleIDs)
	return &Member{
		TaskID:    t.ID,
		Role:      MemberExecutor,
		SubjectID: roleIDs[0],
		Kind:      SubjectRole,
	}, nil
}
