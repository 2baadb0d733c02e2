package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/usecase"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statsHandler serves the counters of the admin dashboard.
func statsHandler(jobUC usecase.JobUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facets, err := jobUC.Facets(r.Context())
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		response := struct {
			TotalJobs    int                     `json:"total_jobs"`
			JobsByStatus map[model.JobStatus]int `json:"jobs_by_status"`
			Institutions int                     `json:"institutions"`
		}{
			TotalJobs:    facets.Total,
			JobsByStatus: facets.ByStatus,
			Institutions: len(facets.Institutions),
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func jobsListHandler(jobUC usecase.JobUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobUC.List(r.Context(), model.JobFilter{})
		if err != nil {
			http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": jobs})
	}
}

func jobsCreateHandler(jobUC usecase.JobUseCase, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.JobDraft
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		job, err := jobUC.Create(r.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "title and institution are required", http.StatusUnprocessableEntity)
				return
			}
			l := logging.With(r.Context(), logger)
			l.Error().Err(err).Msg("create job failed")
			http.Error(w, "Failed to create job", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, job)
	}
}

// refreshStatusHandler runs the status refresh out of schedule.
func refreshStatusHandler(jobUC usecase.JobUseCase, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := jobUC.RefreshStatuses(r.Context())
		if err != nil {
			l := logging.With(r.Context(), logger)
			l.Error().Err(err).Msg("manual status refresh failed")
			http.Error(w, "Failed to refresh statuses", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
	}
}
