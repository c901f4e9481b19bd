// Package httpapi exposes the current grid configuration for operators.
// It is read-only: nothing here changes the configuration.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adaptive-grid-bot/internal/container"
)

// View is the part of the container the API reads from.
type View interface {
	Summary() container.Summary
	Levels() []float64
	Spacing() float64
	ShouldConsiderRecompute(elapsed time.Duration) bool
	Health() error
}

// GridResponse handles GET /api/v1/grid
type GridResponse struct {
	Spacing float64   `json:"spacing"`
	Levels  []float64 `json:"levels"`
}

type RecomputeResponse struct {
	Elapsed   string `json:"elapsed"`
	Recompute bool   `json:"recompute"`
}

// NewRouter wires the debug routes; metrics may be nil.
func NewRouter(v View, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := v.Health(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summary", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, v.Summary())
		})
		r.Get("/grid", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, GridResponse{Spacing: v.Spacing(), Levels: v.Levels()})
		})
		r.Get("/grid/recompute", func(w http.ResponseWriter, req *http.Request) {
			elapsed, err := time.ParseDuration(req.URL.Query().Get("elapsed"))
			if err != nil || elapsed < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "elapsed must be a non-negative duration, e.g. 300s"})
				return
			}
			writeJSON(w, http.StatusOK, RecomputeResponse{
				Elapsed:   elapsed.String(),
				Recompute: v.ShouldConsiderRecompute(elapsed),
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
