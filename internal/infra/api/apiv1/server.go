package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/ports/adapter"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ServerInterface = (*Server)(nil)

// Texts supplies user-facing messages; *i18n.Translator satisfies it.
type Texts interface {
	T(key string, args ...interface{}) string
}

type Deps struct {
	Conversations usecase.ConversationUseCase
	Jobs          usecase.JobUseCase
	Profiles      usecase.ProfileUseCase
	Relay         adapter.Relay
	Texts         Texts
	// AllowedOrigins restricts websocket upgrades; empty allows every origin.
	AllowedOrigins []string
}

type Server struct {
	convs    usecase.ConversationUseCase
	jobs     usecase.JobUseCase
	profiles usecase.ProfileUseCase
	relay    adapter.Relay
	texts    Texts
	origins  map[string]bool
	upgrader websocket.Upgrader
	log      *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		convs:    d.Conversations,
		jobs:     d.Jobs,
		profiles: d.Profiles,
		relay:    d.Relay,
		texts:    d.Texts,
		origins:  make(map[string]bool, len(d.AllowedOrigins)),
		log:      logger,
	}
	for _, o := range d.AllowedOrigins {
		s.origins[o] = true
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errTexts picks the localized message for the errors an operation can produce.
type errTexts struct {
	notFound string
	invalid  string
	failed   string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, key string) {
	writeJSON(w, status, ErrorResponse{Error: s.texts.T(key), Code: code})
}

// fail maps a domain error onto a status code and a localized message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, keys errTexts) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", keys.notFound)
	case errors.Is(err, domain.ErrAlreadyApplied):
		s.writeError(w, http.StatusConflict, "already_applied", "apply.already_applied")
	case errors.Is(err, domain.ErrAwaitingReply):
		s.writeError(w, http.StatusConflict, "awaiting_reply", "chat.awaiting")
	case errors.Is(err, domain.ErrEmptyMessage):
		s.writeError(w, http.StatusUnprocessableEntity, "empty_message", "chat.empty_message")
	case errors.Is(err, domain.ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, "rate_limited", "chat.rate_limited")
	case errors.Is(err, domain.ErrInvalidArgument):
		s.writeError(w, http.StatusUnprocessableEntity, "invalid_argument", keys.invalid)
	case errors.Is(err, domain.ErrForbidden):
		s.writeError(w, http.StatusForbidden, "forbidden", "error.unauthorized")
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, "internal", keys.failed)
	}
}

func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	l := logging.With(r.Context(), s.log)
	l.Debug().Err(err).Msg("bad request parameter")
	s.writeError(w, http.StatusBadRequest, "bad_request", "error.bad_request")
}

// userID returns the authenticated user or writes 401.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := logging.UserID(r.Context())
	if uid == "" {
		s.writeError(w, http.StatusUnauthorized, "unauthorized", "error.unauthorized")
		return "", false
	}
	return uid, true
}

// decodeBody rejects missing or malformed JSON bodies with 400.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		s.writeError(w, http.StatusBadRequest, "bad_request", "error.bad_request")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "error.bad_request")
		return false
	}
	return true
}
