package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is the /api/v1 surface described in api/openapi.yaml.
type ServerInterface interface {
	// (POST /api/v1/conversations)
	OpenConversation(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/conversations/{id})
	GetConversation(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /api/v1/conversations/{id})
	CloseConversation(w http.ResponseWriter, r *http.Request, id string)
	// (POST /api/v1/conversations/{id}/messages)
	SendMessage(w http.ResponseWriter, r *http.Request, id string)
	// (GET /api/v1/conversations/{id}/ws)
	WatchConversation(w http.ResponseWriter, r *http.Request, id string)
	// (POST /api/v1/relay)
	Relay(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/jobs)
	ListJobs(w http.ResponseWriter, r *http.Request, params ListJobsParams)
	// (GET /api/v1/jobs/facets)
	GetJobFacets(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/jobs/{id})
	GetJob(w http.ResponseWriter, r *http.Request, id string)
	// (POST /api/v1/jobs/{id}/apply)
	ApplyJob(w http.ResponseWriter, r *http.Request, id string)
	// (GET /api/v1/applications)
	ListApplications(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/profile)
	GetProfile(w http.ResponseWriter, r *http.Request)
	// (PUT /api/v1/profile)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

// ListJobsParams are the query parameters of GET /api/v1/jobs.
type ListJobsParams struct {
	Q               *string `form:"q,omitempty" json:"q,omitempty"`
	Institution     *string `form:"institution,omitempty" json:"institution,omitempty"`
	Position        *string `form:"position,omitempty" json:"position,omitempty"`
	InstitutionType *string `form:"institution_type,omitempty" json:"institution_type,omitempty"`
	Status          *string `form:"status,omitempty" json:"status,omitempty"`
}

// ErrorHandlerFunc reports parameter binding failures.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// ServerInterfaceWrapper binds path and query parameters before dispatching.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc ErrorHandlerFunc
}

func (siw *ServerInterfaceWrapper) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || id == "" {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) OpenConversation(w http.ResponseWriter, r *http.Request) {
	siw.Handler.OpenConversation(w, r)
}

func (siw *ServerInterfaceWrapper) GetConversation(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.GetConversation(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) CloseConversation(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.CloseConversation(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) SendMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.SendMessage(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) WatchConversation(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.WatchConversation(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) Relay(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Relay(w, r)
}

func (siw *ServerInterfaceWrapper) ListJobs(w http.ResponseWriter, r *http.Request) {
	var params ListJobsParams
	q := r.URL.Query()
	bind := []struct {
		name string
		dest **string
	}{
		{"q", &params.Q},
		{"institution", &params.Institution},
		{"position", &params.Position},
		{"institution_type", &params.InstitutionType},
		{"status", &params.Status},
	}
	for _, b := range bind {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}
	siw.Handler.ListJobs(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetJobFacets(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetJobFacets(w, r)
}

func (siw *ServerInterfaceWrapper) GetJob(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.GetJob(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) ApplyJob(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.ApplyJob(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) ListApplications(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListApplications(w, r)
}

func (siw *ServerInterfaceWrapper) GetProfile(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetProfile(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	siw.Handler.UpdateProfile(w, r)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	if e.Err == nil {
		return "invalid format for parameter " + e.ParamName
	}
	return "invalid format for parameter " + e.ParamName + ": " + e.Err.Error()
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// RegisterAPIV1 mounts the /api/v1 routes of srv on r. Middleware (auth included)
// is the caller's business.
func RegisterAPIV1(r chi.Router, srv *Server) {
	wrapper := ServerInterfaceWrapper{
		Handler:          srv,
		ErrorHandlerFunc: srv.paramError,
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/conversations", wrapper.OpenConversation)
		r.Get("/conversations/{id}", wrapper.GetConversation)
		r.Delete("/conversations/{id}", wrapper.CloseConversation)
		r.Post("/conversations/{id}/messages", wrapper.SendMessage)
		r.Get("/conversations/{id}/ws", wrapper.WatchConversation)

		r.Post("/relay", wrapper.Relay)

		r.Get("/jobs", wrapper.ListJobs)
		r.Get("/jobs/facets", wrapper.GetJobFacets)
		r.Get("/jobs/{id}", wrapper.GetJob)
		r.Post("/jobs/{id}/apply", wrapper.ApplyJob)

		r.Get("/applications", wrapper.ListApplications)
		r.Get("/profile", wrapper.GetProfile)
		r.Put("/profile", wrapper.UpdateProfile)
	})
}
