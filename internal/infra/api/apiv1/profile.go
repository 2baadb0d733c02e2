package apiv1

import (
	"net/http"

	"agent-promosi/internal/domain/model"
)

type ProfileResponse struct {
	Profile *model.Profile `json:"profile"`
	Message string         `json:"message,omitempty"`
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := s.profiles.Get(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err, errTexts{notFound: "profile.not_found", invalid: "profile.invalid", failed: "error.internal"})
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var upd model.ProfileUpdate
	if !s.decodeBody(w, r, &upd) {
		return
	}
	p, err := s.profiles.Update(r.Context(), uid, upd)
	if err != nil {
		s.fail(w, r, err, errTexts{notFound: "profile.not_found", invalid: "profile.invalid", failed: "profile.update_failed"})
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p, Message: s.texts.T("profile.updated")})
}
