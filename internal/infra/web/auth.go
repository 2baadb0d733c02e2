package web

import (
	"errors"
	"net/http"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/infra/logging"
)

// requireAdmin looks up the caller's profile and rejects everyone but admins.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := logging.UserID(r.Context())
		if uid == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := s.profileUC.Get(r.Context(), uid)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		case err != nil:
			l := logging.With(r.Context(), s.log)
			l.Error().Err(err).Msg("admin profile lookup failed")
			http.Error(w, "Failed to load profile", http.StatusInternalServerError)
			return
		}
		if p.Role != model.RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
