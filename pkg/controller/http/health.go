package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
)

// handleHealth reports service health including run store reachability.
func handleHealth(repo interfaces.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "loom",
			Version: types.Version,
			Store:   "ok",
		}

		code := http.StatusOK
		if _, err := repo.ListRuns(r.Context()); err != nil {
			ctxlog.From(r.Context()).Error("Run store unreachable", "error", err)
			status.Status = "degraded"
			status.Store = "error"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}
