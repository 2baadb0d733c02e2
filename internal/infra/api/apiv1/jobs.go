package apiv1

import (
	"net/http"

	"agent-promosi/internal/domain/model"
)

var jobErrTexts = errTexts{notFound: "job.not_found", invalid: "error.bad_request", failed: "error.internal"}

type ApplyResponse struct {
	Application *model.JobApplication `json:"application"`
	Message     string                `json:"message"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (p ListJobsParams) filter() (model.JobFilter, error) {
	f := model.JobFilter{
		SearchTerm:      deref(p.Q),
		Institution:     deref(p.Institution),
		Position:        deref(p.Position),
		InstitutionType: deref(p.InstitutionType),
	}
	if st := deref(p.Status); st != "" {
		status, err := model.ParseJobStatus(st)
		if err != nil {
			return model.JobFilter{}, err
		}
		f.Status = status
	}
	return f, nil
}

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request, params ListJobsParams) {
	f, err := params.filter()
	if err != nil {
		s.paramError(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}
	jobs, err := s.jobs.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, jobErrTexts)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": jobs})
}

func (s *Server) GetJobFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.jobs.Facets(r.Context())
	if err != nil {
		s.fail(w, r, err, jobErrTexts)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, jobErrTexts)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ApplyJob answers 201 on success, 409 on a repeat application and 404 for unknown listings.
func (s *Server) ApplyJob(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	app, err := s.jobs.Apply(r.Context(), id, uid)
	if err != nil {
		s.fail(w, r, err, errTexts{notFound: "job.not_found", invalid: "error.bad_request", failed: "apply.failed"})
		return
	}
	writeJSON(w, http.StatusCreated, ApplyResponse{Application: app, Message: s.texts.T("apply.success")})
}

func (s *Server) ListApplications(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	apps, err := s.jobs.ListApplications(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err, jobErrTexts)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": apps})
}
