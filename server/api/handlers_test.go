package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/regsync/eozfeed/feed"
	"github.com/regsync/eozfeed/tracker"
)

// newTestMux builds a handler mux over a seeded tracker snapshot.
func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := tracker.NewSQLiteStore(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	seed := []func() error{
		func() error { return store.InsertUser(ctx, &tracker.User{ID: "U-1", Name: "Alice", HRID: "HR-1"}) },
		func() error { return store.InsertUser(ctx, &tracker.User{ID: "U-2", Name: "Bob"}) },
		func() error { return store.InsertRole(ctx, &tracker.Role{ID: "R-3", Name: "Approver"}) },
		func() error { return store.GrantPermission(ctx, "R-3", "P-1") },
		func() error {
			created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
			return store.InsertTask(ctx, &tracker.Task{
				ID: "T-1", Name: "Reconcile ledgers", URI: "https://tracker.local/T-1",
				Status: tracker.StatusNew, Decision: tracker.DecisionNotDecided,
				ReporterID: "U-1", PermissionID: "P-1",
				CreatedAt: created, UpdatedAt: created,
			})
		},
	}
	for _, fn := range seed {
		if err := fn(); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Handlers{
		Feed:    feed.NewBuilder(store, logger),
		Store:   store,
		Logger:  logger,
		Version: "test",
	}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.HandleFunc("GET /api/status", h.StatusHandler())
	mux.HandleFunc("GET /api/version", h.VersionHandler())
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestTaskFeedHandler(t *testing.T) {
	mux := newTestMux(t)

	rec := get(t, mux, "/api/feed/tasks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var rows []feed.TaskRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].ID != "T-1" {
		t.Errorf("ID = %q, want T-1", rows[0].ID)
	}
	if rows[0].Status == nil || *rows[0].Status != feed.StatusCreated {
		t.Errorf("Status = %v, want CREATED", rows[0].Status)
	}
	if rows[0].SourceName != feed.SourceName {
		t.Errorf("SourceName = %q, want %q", rows[0].SourceName, feed.SourceName)
	}
}

func TestMemberFeedHandler(t *testing.T) {
	mux := newTestMux(t)

	rec := get(t, mux, "/api/feed/members")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var members []feed.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []feed.Member{
		{TaskID: "T-1", Role: feed.MemberAuthor, SubjectID: "HR-1", Kind: feed.SubjectUser},
		{TaskID: "T-1", Role: feed.MemberExecutor, SubjectID: "R-3", Kind: feed.SubjectRole},
	}
	if len(members) != len(want) {
		t.Fatalf("len(members) = %d, want %d: %v", len(members), len(want), members)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("members[%d] = %v, want %v", i, members[i], want[i])
		}
	}
}

func TestListTasksHandler(t *testing.T) {
	mux := newTestMux(t)

	rec := get(t, mux, "/api/tasks?status=new")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var tasks []*tracker.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "T-1" {
		t.Errorf("tasks = %v, want [T-1]", tasks)
	}

	rec = get(t, mux, "/api/tasks?status=cancelled")
	var none []*tracker.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &none); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("none = %v, want empty", none)
	}
}

func TestGetTaskHandler(t *testing.T) {
	mux := newTestMux(t)

	rec := get(t, mux, "/api/tasks/T-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = get(t, mux, "/api/tasks/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStatusAndVersionHandlers(t *testing.T) {
	mux := newTestMux(t)

	rec := get(t, mux, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var status map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status["status"] != "ok" || status["version"] != "test" {
		t.Errorf("status = %v", status)
	}

	rec = get(t, mux, "/api/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("version status = %d, want 200", rec.Code)
	}
}
