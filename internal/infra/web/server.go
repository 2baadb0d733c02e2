package web

import (
	"net/http"

	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server is the admin panel API. It expects an authenticated user on the
// request context and only serves profiles with the admin role.
type Server struct {
	jobUC     usecase.JobUseCase
	profileUC usecase.ProfileUseCase
	log       *zerolog.Logger
}

func NewServer(jobUC usecase.JobUseCase, profileUC usecase.ProfileUseCase, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{jobUC: jobUC, profileUC: profileUC, log: logger}
}

// RegisterRoutes mounts the admin API under /admin/api.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/stats", statsHandler(s.jobUC))
		r.Get("/jobs", jobsListHandler(s.jobUC))
		r.Post("/jobs", jobsCreateHandler(s.jobUC, s.log))
		r.Post("/jobs/refresh-status", refreshStatusHandler(s.jobUC, s.log))
	})
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return r
}
