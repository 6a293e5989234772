package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
)

// APIHandler serves the read-only run query API
type APIHandler struct {
	repo interfaces.Repository
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(repo interfaces.Repository) *APIHandler {
	return &APIHandler{repo: repo}
}

// ListRuns returns all runs, newest first
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repo.ListRuns(r.Context())
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to list runs", "error", err)
		writeError(w, goerr.Wrap(err, "failed to list runs"), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"runs": runs})
}

// runDetail is the response shape of GetRun
type runDetail struct {
	Run  *model.Run   `json:"run"`
	Jobs []*model.Job `json:"jobs"`
}

// GetRun returns one run with its jobs in expansion order
func (h *APIHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := types.RunID(chi.URLParam(r, "runID"))

	run, err := h.repo.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, goerr.Wrap(err, "run not found"), http.StatusNotFound)
		return
	}

	jobs, err := h.repo.ListJobs(r.Context(), runID)
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to list jobs", "error", err, "run_id", runID)
		writeError(w, goerr.Wrap(err, "failed to list jobs"), http.StatusInternalServerError)
		return
	}

	writeJSON(w, &runDetail{Run: run, Jobs: jobs})
}

// ListRunJobs returns the jobs of one run in expansion order
func (h *APIHandler) ListRunJobs(w http.ResponseWriter, r *http.Request) {
	runID := types.RunID(chi.URLParam(r, "runID"))

	if _, err := h.repo.GetRun(r.Context(), runID); err != nil {
		writeError(w, goerr.Wrap(err, "run not found"), http.StatusNotFound)
		return
	}

	jobs, err := h.repo.ListJobs(r.Context(), runID)
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to list jobs", "error", err, "run_id", runID)
		writeError(w, goerr.Wrap(err, "failed to list jobs"), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"jobs": jobs})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode response", "error", err)
	}
}
