package apiv1

import (
	"net/http"
	"strings"
)

var convErrTexts = errTexts{notFound: "chat.not_found", invalid: "error.bad_request", failed: "error.internal"}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type RelayRequest struct {
	Message string `json:"message"`
}

func (s *Server) OpenConversation(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	tr, err := s.convs.Open(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err, convErrTexts)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	tr, err := s.convs.Get(r.Context(), uid, id)
	if err != nil {
		s.fail(w, r, err, convErrTexts)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) CloseConversation(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.convs.Close(r.Context(), uid, id); err != nil {
		s.fail(w, r, err, convErrTexts)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage appends the user turn and answers 202 with the awaiting transcript.
// The bot reply arrives on the websocket stream or a later GET.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	tr, err := s.convs.Send(r.Context(), uid, id, req.Text)
	if err != nil {
		s.fail(w, r, err, convErrTexts)
		return
	}
	writeJSON(w, http.StatusAccepted, tr)
}

// Relay forwards one message without a conversation and returns the outcome as is.
func (s *Server) Relay(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}
	var req RelayRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "empty_message", "chat.empty_message")
		return
	}
	writeJSON(w, http.StatusOK, s.relay.Send(r.Context(), req.Message))
}
