// Package api implements the REST handlers for the reconciliation feed.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/regsync/eozfeed/feed"
	"github.com/regsync/eozfeed/tracker"
)

// Handlers bundles all REST API handler dependencies.
type Handlers struct {
	Feed    *feed.Builder
	Store   tracker.Store
	Logger  *slog.Logger
	Version string
	StartAt int64 // unix timestamp of server start
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/feed/tasks", h.taskFeed)
	mux.HandleFunc("GET /api/feed/members", h.memberFeed)

	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("GET /api/tasks/{id}", h.getTask)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Feed handlers ---

// taskFeed recomputes and returns the task feed. Every request gets a
// fresh snapshot; nothing is cached.
func (h *Handlers) taskFeed(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Feed.TaskFeed(r.Context())
	if err != nil {
		h.Logger.Error("task feed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, "upstream store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// memberFeed recomputes and returns the member feed.
func (h *Handlers) memberFeed(w http.ResponseWriter, r *http.Request) {
	members, err := h.Feed.MemberFeed(r.Context())
	if err != nil {
		h.Logger.Error("member feed", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, "upstream store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// --- Tracker inspection handlers ---

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tracker.Filter{}

	if s := q.Get("status"); s != "" {
		st := tracker.Status(s)
		filter.Status = &st
	}
	if rep := q.Get("reporter_id"); rep != "" {
		filter.ReporterID = rep
	}
	if ex := q.Get("executor_id"); ex != "" {
		filter.ExecutorID = ex
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			filter.Limit = n
		}
	}
	if o := q.Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil {
			filter.Offset = n
		}
	}

	tasks, err := h.Store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []*tracker.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.Store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- Status / version ---

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
	})
}

// StatusHandler returns the status handler function for external registration.
func (h *Handlers) StatusHandler() http.HandlerFunc {
	return h.status
}

func (h *Handlers) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
	})
}

// VersionHandler returns the version handler function for external registration.
func (h *Handlers) VersionHandler() http.HandlerFunc {
	return h.version
}
