package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/infra/logging"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 16 << 10
)

// WSFrame is every message the server writes on the transcript stream.
type WSFrame struct {
	Type       string            `json:"type"` // transcript|error
	Transcript *model.Transcript `json:"transcript,omitempty"`
	Code       string            `json:"code,omitempty"`
	Text       string            `json:"text,omitempty"`
}

// WSIncoming is a chat submission sent over the stream.
type WSIncoming struct {
	Text string `json:"text"`
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients
	}
	return s.origins[origin]
}

// WatchConversation upgrades to a websocket that pushes a transcript snapshot after
// every change. Frames of the form {"text": "..."} submit a message.
func (s *Server) WatchConversation(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	updates, stop, err := s.convs.Watch(r.Context(), uid, id)
	if err != nil {
		s.fail(w, r, err, convErrTexts)
		return
	}
	defer stop()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		l := logging.With(r.Context(), s.log)
		l.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(logging.WithConversationID(r.Context(), id))
	defer cancel()
	log := logging.With(ctx, s.log)

	frames := make(chan WSFrame, 4)
	go s.readFrames(ctx, cancel, conn, uid, id, frames)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tr, ok := <-updates:
			if !ok {
				// conversation closed or evicted
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation closed"))
				return
			}
			if err := s.writeFrame(conn, WSFrame{Type: "transcript", Transcript: &tr}); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case f := <-frames:
			if err := s.writeFrame(conn, f); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, f WSFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f)
}

// readFrames owns the read side of conn. Only the writer loop writes to conn.
func (s *Server) readFrames(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, uid, id string, out chan<- WSFrame) {
	defer cancel()
	log := logging.With(ctx, s.log)

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
		var in WSIncoming
		if err := json.Unmarshal(msg, &in); err != nil {
			if !s.push(ctx, out, WSFrame{Type: "error", Code: "bad_request", Text: s.texts.T("error.bad_request")}) {
				return
			}
			continue
		}
		// replies come back as transcript frames; only rejections need a frame here
		if _, err := s.convs.Send(ctx, uid, id, in.Text); err != nil {
			if !s.push(ctx, out, s.errorFrame(err)) || errors.Is(err, domain.ErrNotFound) {
				return
			}
		}
	}
}

func (s *Server) push(ctx context.Context, out chan<- WSFrame, f WSFrame) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) errorFrame(err error) WSFrame {
	code, key := "internal", "error.internal"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code, key = "not_found", "chat.not_found"
	case errors.Is(err, domain.ErrEmptyMessage):
		code, key = "empty_message", "chat.empty_message"
	case errors.Is(err, domain.ErrAwaitingReply):
		code, key = "awaiting_reply", "chat.awaiting"
	case errors.Is(err, domain.ErrRateLimited):
		code, key = "rate_limited", "chat.rate_limited"
	}
	return WSFrame{Type: "error", Code: code, Text: s.texts.T(key)}
}
