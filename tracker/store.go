package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	uri               TEXT NOT NULL DEFAULT '',
	short_description TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	decision          TEXT NOT NULL DEFAULT 'not_decided',
	reporter_id       TEXT NOT NULL,
	executor_id       TEXT NOT NULL DEFAULT '',
	permission_id     TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	deadline          DATETIME,
	updated_at        DATETIME NOT NULL,
	completed_at      DATETIME
);

CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	hr_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS roles (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS role_permissions (
	role_id       TEXT NOT NULL,
	permission_id TEXT NOT NULL,
	PRIMARY KEY (role_id, permission_id)
);
`

// SQLiteStore reads the task tracker snapshot from a SQLite database.
// The feed path only ever queries it; the insert methods exist for the
// seed tool and for tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the tracker tables exist. The caller is responsible for
// calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ListTasks returns tasks matching the filter, oldest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter Filter) ([]*Task, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT id, name, uri, short_description, status, decision,
		reporter_id, executor_id, permission_id,
		created_at, deadline, updated_at, completed_at
		FROM tasks WHERE 1=1`)
	args := []any{}

	if filter.Status != nil {
		q.WriteString(" AND status=?")
		args = append(args, string(*filter.Status))
	}
	if filter.ReporterID != "" {
		q.WriteString(" AND reporter_id=?")
		args = append(args, filter.ReporterID)
	}
	if filter.ExecutorID != "" {
		q.WriteString(" AND executor_id=?")
		args = append(args, filter.ExecutorID)
	}
	q.WriteString(" ORDER BY created_at ASC, id ASC")
	if filter.Limit > 0 {
		q.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
		if filter.Offset > 0 {
			q.WriteString(fmt.Sprintf(" OFFSET %d", filter.Offset))
		}
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, uri, short_description, status, decision,
		reporter_id, executor_id, permission_id,
		created_at, deadline, updated_at, completed_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// UserExternalID returns the HR identifier of a user. An unknown user or
// a user without one yields "" with no error; only query failures are
// reported.
func (s *SQLiteStore) UserExternalID(ctx context.Context, userID string) (string, error) {
	var hrID string
	err := s.db.QueryRowContext(ctx, `SELECT hr_id FROM users WHERE id = ?`, userID).Scan(&hrID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return hrID, nil
}

// RolesForPermission returns the IDs of all roles granted the permission.
func (s *SQLiteStore) RolesForPermission(ctx context.Context, permissionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role_id FROM role_permissions WHERE permission_id = ?`, permissionID)
	if err != nil {
		return nil, fmt.Errorf("roles for permission %s: %w", permissionID, err)
	}
	defer rows.Close()

	var roleIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		roleIDs = append(roleIDs, id)
	}
	return roleIDs, rows.Err()
}

// InsertTask writes a task row, setting CreatedAt and UpdatedAt if zero.
// Seed/test support only; the feed never writes.
func (s *SQLiteStore) InsertTask(ctx context.Context, t *Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks
			(id, name, uri, short_description, status, decision,
			 reporter_id, executor_id, permission_id,
			 created_at, deadline, updated_at, completed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Name, t.URI, t.ShortDescription,
		string(t.Status), string(t.Decision),
		t.ReporterID, t.ExecutorID, t.PermissionID,
		t.CreatedAt, nullTime(t.Deadline), t.UpdatedAt, nullTime(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// InsertUser writes a directory entry. Seed/test support only.
func (s *SQLiteStore) InsertUser(ctx context.Context, u *User) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, hr_id) VALUES (?,?,?)`,
		u.ID, u.Name, u.HRID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// InsertRole writes a role row. Seed/test support only.
func (s *SQLiteStore) InsertRole(ctx context.Context, r *Role) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO roles (id, name) VALUES (?,?)`,
		r.ID, r.Name); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// GrantPermission associates a permission with a role. Seed/test support only.
func (s *SQLiteStore) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES (?,?)`,
		roleID, permissionID); err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var status, decision string
	var deadline, completedAt sql.NullTime

	err := s.Scan(
		&t.ID, &t.Name, &t.URI, &t.ShortDescription,
		&status, &decision,
		&t.ReporterID, &t.ExecutorID, &t.PermissionID,
		&t.CreatedAt, &deadline, &t.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = Status(status)
	t.Decision = Decision(decision)

	if deadline.Valid {
		t.Deadline = &deadline.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
