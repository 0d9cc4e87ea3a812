package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/regsync/eozfeed/tracker"
)

// SourceName labels every task row with the subsystem it originates
// from, so the registry can tell this feed apart from other feeds it
// reconciles against.
const SourceName = "task_tracker"

// TaskRow is one row of the task feed. Status is null when the task's
// lifecycle pair matched no normalization rule; such rows stay in the
// feed so the anomaly is visible to reconciliation.
type TaskRow struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	URI              string     `json:"uri"`
	ShortDescription string     `json:"short_description"`
	Status           *Status    `json:"status"`
	SourceName       string     `json:"source_name"`
	CreatedAt        time.Time  `json:"created_at"`
	Deadline         *time.Time `json:"deadline"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ClosedAt         *time.Time `json:"closed_at"`
}

// Builder computes the two reconciliation views. It holds no state
// between calls; every call re-reads the tracker so consumers always get
// a current snapshot.
type Builder struct {
	store  tracker.Store
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given tracker store.
func NewBuilder(store tracker.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, logger: logger}
}

// TaskFeed returns one row per task in the tracker.
func (b *Builder) TaskFeed(ctx context.Context) ([]TaskRow, error) {
	tasks, err := b.store.ListTasks(ctx, tracker.Filter{})
	if err != nil {
		return nil, fmt.Errorf("task feed: %w", err)
	}

	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, b.taskRow(t))
	}
	return rows, nil
}

// MemberFeed returns the member rows of every task in the tracker.
func (b *Builder) MemberFeed(ctx context.Context) ([]Member, error) {
	tasks, err := b.store.ListTasks(ctx, tracker.Filter{})
	if err != nil {
		return nil, fmt.Errorf("member feed: %w", err)
	}

	members := []Member{}
	for _, t := range tasks {
		m, err := ResolveMembers(ctx, b.store, t)
		if err != nil {
			return nil, fmt.Errorf("member feed: %w", err)
		}
		members = append(members, m...)
	}
	return members, nil
}

// taskRow projects a single task onto its feed shape.
func (b *Builder) taskRow(t *tracker.Task) TaskRow {
	row := TaskRow{
		ID:               t.ID,
		Name:             t.Name,
		URI:              t.URI,
		ShortDescription: t.ShortDescription,
		SourceName:       SourceName,
		CreatedAt:        t.CreatedAt,
		Deadline:         t.Deadline,
		UpdatedAt:        t.UpdatedAt,
		ClosedAt:         t.CompletedAt,
	}
	if st, ok := NormalizeStatus(t.Status, t.Decision); ok {
		row.Status = &st
	} else {
		b.logger.Warn("task has no normalized status",
			slog.String("task_id", t.ID),
			slog.String("status", string(t.Status)),
			slog.String("decision", string(t.Decision)),
		)
	}
	return row
}
