//go:build !integration

package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agent-promosi/internal/config"
	"agent-promosi/internal/infra/api/apiv1"
	"agent-promosi/internal/infra/logging"
)

type keyTexts struct{}

func (keyTexts) T(key string, args ...interface{}) string { return key }

func TestAuthenticator_MintParse(t *testing.T) {
	a := NewAuthenticator(config.AuthConfig{JWTSecret: "s3cret", Issuer: "promosi"})

	tok, err := a.Mint("u1", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	uid, err := a.Parse(tok)
	if err != nil || uid != "u1" {
		t.Fatalf("Parse() = %q, %v", uid, err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthenticator(config.AuthConfig{JWTSecret: "other", Issuer: "promosi"})
		if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewAuthenticator(config.AuthConfig{JWTSecret: "s3cret", Issuer: "elsewhere"})
		if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { a.now = time.Now }()
		if _, err := a.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		blank, _ := a.Mint("", time.Hour)
		if _, err := a.Parse(blank); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	a := NewAuthenticator(config.AuthConfig{JWTSecret: "s3cret"})
	tok, _ := a.Mint("u7", time.Hour)

	var seen string
	h := RequireAuth(a, "login first")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.UserID(r.Context())
	}))

	cases := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantUser string
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK, "u7"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+tok) }, http.StatusOK, "u7"},
		{"query token", func(r *http.Request) { r.URL.RawQuery = "access_token=" + tok }, http.StatusOK, "u7"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			c.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != c.wantCode {
				t.Fatalf("want %d, got %d", c.wantCode, rec.Code)
			}
			if seen != c.wantUser {
				t.Errorf("user = %q, want %q", seen, c.wantUser)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	logger := logging.Nop()

	t.Run("trace id is generated and echoed", func(t *testing.T) {
		var inCtx string
		h := TraceID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inCtx = logging.TraceID(r.Context())
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if inCtx == "" || rec.Header().Get("X-Request-ID") != inCtx {
			t.Errorf("trace id %q not echoed (%q)", inCtx, rec.Header().Get("X-Request-ID"))
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if inCtx != "abc" {
			t.Errorf("incoming request id not reused: %q", inCtx)
		}
	})

	t.Run("recover turns a panic into 500", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }),
			RequestLog(logger), Recover(logger))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d", rec.Code)
		}
	})

	t.Run("timeout bounds plain requests only", func(t *testing.T) {
		var deadline bool
		h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, deadline = r.Context().Deadline()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !deadline {
			t.Error("plain request should carry a deadline")
		}

		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if deadline {
			t.Error("websocket upgrade should not carry a deadline")
		}
	})
}

func TestNewRouter(t *testing.T) {
	a := NewAuthenticator(config.AuthConfig{JWTSecret: "s3cret"})
	srv := apiv1.NewServer(apiv1.Deps{Texts: keyTexts{}}, nil)
	r := NewRouter(config.HTTPConfig{RequestTimeout: time.Second}, a, srv, nil, keyTexts{}, logging.Nop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: want 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/relay", bytes.NewBufferString(`{"message":" "}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous api call: want 401, got %d", rec.Code)
	}

	tok, _ := a.Mint("u1", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/relay", bytes.NewBufferString(`{"message":" "}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("authenticated blank relay: want 422, got %d, body=%s", rec.Code, rec.Body.String())
	}
}
