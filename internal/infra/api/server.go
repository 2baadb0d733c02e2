package api

import (
	"net/http"

	"agent-promosi/internal/config"
	"agent-promosi/internal/infra/api/apiv1"
	"agent-promosi/internal/infra/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Texts supplies user-facing messages; *i18n.Translator satisfies it.
type Texts interface {
	T(key string, args ...interface{}) string
}

// NewRouter mounts the public endpoints, the authenticated /api/v1 surface and,
// when admin is non-nil, the admin panel API.
func NewRouter(cfg config.HTTPConfig, auth *Authenticator, srv *apiv1.Server, admin *web.Server, texts Texts, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(
		TraceID(logger),
		RequestLog(logger),
		Recover(logger),
		Timeout(cfg.RequestTimeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(auth, texts.T("error.unauthorized")))
		apiv1.RegisterAPIV1(r, srv)
		if admin != nil {
			admin.RegisterRoutes(r)
		}
	})
	return r
}
