//go:build !integration

package apiv1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"agent-promosi/internal/config"
	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	apiv1 "agent-promosi/internal/infra/api/apiv1"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/worker"
	"agent-promosi/internal/usecase"
)

//
// ---------------- fakes ----------------
//

type keyTexts struct{}

func (keyTexts) T(key string, args ...interface{}) string { return key }

type fakeRelay struct {
	gate  chan struct{}
	reply string
}

func (f *fakeRelay) Send(ctx context.Context, message string) model.RelayResult {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return model.RelayResult{OK: false, Text: "relay.timeout"}
		}
	}
	return model.RelayResult{OK: true, Text: f.reply}
}

type fakeJobs struct {
	list     func(f model.JobFilter) ([]*model.JobListing, error)
	get      func(id string) (*model.JobListing, error)
	apply    func(jobID, userID string) (*model.JobApplication, error)
	lastList model.JobFilter
}

func (f *fakeJobs) List(ctx context.Context, flt model.JobFilter) ([]*model.JobListing, error) {
	f.lastList = flt
	if f.list != nil {
		return f.list(flt)
	}
	return []*model.JobListing{}, nil
}

func (f *fakeJobs) Facets(ctx context.Context) (model.JobFacets, error) {
	return model.BuildFacets([]*model.JobListing{{ID: "1", Title: "Analis", Institution: "BKN", Status: model.JobStatusHot}}), nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*model.JobListing, error) {
	if f.get != nil {
		return f.get(id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) Apply(ctx context.Context, jobID, userID string) (*model.JobApplication, error) {
	return f.apply(jobID, userID)
}

func (f *fakeJobs) ListApplications(ctx context.Context, userID string) ([]*model.JobApplication, error) {
	return []*model.JobApplication{{ID: "a1", JobID: "j1", UserID: userID}}, nil
}

func (f *fakeJobs) RefreshStatuses(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeJobs) Create(ctx context.Context, d model.JobDraft) (*model.JobListing, error) {
	return d.Listing("new")
}

type fakeProfiles struct {
	byID map[string]*model.Profile
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	p, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := p.Apply(upd, time.Now()); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

//
// ---------------- helpers ----------------
//

type harness struct {
	relay    *fakeRelay
	jobs     *fakeJobs
	profiles *fakeProfiles
	srv      *apiv1.Server
}

func newHarness(t *testing.T, origins ...string) *harness {
	t.Helper()
	pool := worker.NewPool(2, logging.Nop())
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	h := &harness{
		relay: &fakeRelay{reply: "halo juga"},
		jobs:  &fakeJobs{},
		profiles: &fakeProfiles{byID: map[string]*model.Profile{
			"u1": {ID: "u1", FullName: "Siti", Role: model.RolePegawai},
		}},
	}
	convs := usecase.NewConversationUseCase(h.relay, pool, nil, keyTexts{}, config.ChatConfig{}, logging.Nop())
	h.srv = apiv1.NewServer(apiv1.Deps{
		Conversations:  convs,
		Jobs:           h.jobs,
		Profiles:       h.profiles,
		Relay:          h.relay,
		Texts:          keyTexts{},
		AllowedOrigins: origins,
	}, nil)
	return h
}

// router mounts the API with user injected as the authenticated caller.
func (h *harness) router(user string) http.Handler {
	r := chi.NewRouter()
	if user != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(logging.WithUserID(req.Context(), user)))
			})
		})
	}
	apiv1.RegisterAPIV1(r, h.srv)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body=%s)", err, rec.Body.String())
	}
	return v
}

func openConversation(t *testing.T, r http.Handler) model.Transcript {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/v1/conversations", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: want 201, got %d, body=%s", rec.Code, rec.Body.String())
	}
	return decode[model.Transcript](t, rec)
}

func waitIdle(t *testing.T, r http.Handler, id string) model.Transcript {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, r, http.MethodGet, "/api/v1/conversations/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("get: want 200, got %d", rec.Code)
		}
		tr := decode[model.Transcript](t, rec)
		if !tr.Awaiting {
			return tr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("conversation never left the awaiting state")
	return model.Transcript{}
}

//
// ---------------- conversations ----------------
//

func TestConversations_SendAndResolve(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")
	tr := openConversation(t, r)

	rec := do(t, r, http.MethodPost, "/api/v1/conversations/"+tr.ID+"/messages", `{"text":"  halo  "}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("want 202, got %d, body=%s", rec.Code, rec.Body.String())
	}
	sent := decode[model.Transcript](t, rec)
	if len(sent.Messages) != 1 || sent.Messages[0].Text != "halo" {
		t.Fatalf("unexpected transcript after send: %+v", sent)
	}

	final := waitIdle(t, r, tr.ID)
	if len(final.Messages) != 2 {
		t.Fatalf("want 2 messages, got %+v", final.Messages)
	}
	if final.Messages[1].Role != model.RoleBot || final.Messages[1].Text != "halo juga" {
		t.Errorf("unexpected bot message %+v", final.Messages[1])
	}
}

func TestConversations_RejectedSubmissions(t *testing.T) {
	t.Run("blank text is 422 and leaves the log alone", func(t *testing.T) {
		h := newHarness(t)
		r := h.router("u1")
		tr := openConversation(t, r)

		rec := do(t, r, http.MethodPost, "/api/v1/conversations/"+tr.ID+"/messages", `{"text":"   "}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d, body=%s", rec.Code, rec.Body.String())
		}
		if e := decode[apiv1.ErrorResponse](t, rec); e.Error != "chat.empty_message" {
			t.Errorf("error text = %q", e.Error)
		}
		got := waitIdle(t, r, tr.ID)
		if len(got.Messages) != 0 {
			t.Errorf("blank submission changed the log: %+v", got.Messages)
		}
	})

	t.Run("second send while awaiting is 409", func(t *testing.T) {
		h := newHarness(t)
		h.relay.gate = make(chan struct{})
		r := h.router("u1")
		tr := openConversation(t, r)

		if rec := do(t, r, http.MethodPost, "/api/v1/conversations/"+tr.ID+"/messages", `{"text":"satu"}`); rec.Code != http.StatusAccepted {
			t.Fatalf("first send: want 202, got %d", rec.Code)
		}
		rec := do(t, r, http.MethodPost, "/api/v1/conversations/"+tr.ID+"/messages", `{"text":"dua"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d, body=%s", rec.Code, rec.Body.String())
		}
		close(h.relay.gate)
		if got := waitIdle(t, r, tr.ID); len(got.Messages) != 2 {
			t.Errorf("want 2 messages, got %+v", got.Messages)
		}
	})

	t.Run("missing body is 400", func(t *testing.T) {
		h := newHarness(t)
		r := h.router("u1")
		tr := openConversation(t, r)

		rec := do(t, r, http.MethodPost, "/api/v1/conversations/"+tr.ID+"/messages", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})
}

func TestConversations_Ownership(t *testing.T) {
	h := newHarness(t)
	tr := openConversation(t, h.router("u1"))

	rec := do(t, h.router("u2"), http.MethodGet, "/api/v1/conversations/"+tr.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign conversation: want 404, got %d", rec.Code)
	}
	if e := decode[apiv1.ErrorResponse](t, rec); e.Error != "chat.not_found" {
		t.Errorf("error text = %q", e.Error)
	}

	if rec := do(t, h.router(""), http.MethodPost, "/api/v1/conversations", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", rec.Code)
	}
}

func TestConversations_Close(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")
	tr := openConversation(t, r)

	if rec := do(t, r, http.MethodDelete, "/api/v1/conversations/"+tr.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/v1/conversations/"+tr.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: want 404, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/api/v1/conversations/"+tr.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: want 404, got %d", rec.Code)
	}
}

func TestRelay_Stateless(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")

	rec := do(t, r, http.MethodPost, "/api/v1/relay", `{"message":"halo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	res := decode[model.RelayResult](t, rec)
	if !res.OK || res.Text != "halo juga" {
		t.Errorf("unexpected result %+v", res)
	}

	if rec := do(t, r, http.MethodPost, "/api/v1/relay", `{"message":" "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank message: want 422, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/v1/relay", `{not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: want 400, got %d", rec.Code)
	}
}

//
// ---------------- websocket ----------------
//

func wsURL(srv *httptest.Server, id string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/conversations/" + id + "/ws"
}

func readFrame(t *testing.T, conn *websocket.Conn) apiv1.WSFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f apiv1.WSFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestWatchConversation_StreamsTranscript(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")
	tr := openConversation(t, r)
	ts := httptest.NewServer(r)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, tr.ID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if f := readFrame(t, conn); f.Type != "transcript" || f.Transcript == nil || len(f.Transcript.Messages) != 0 {
		t.Fatalf("unexpected initial frame %+v", f)
	}

	if err := conn.WriteJSON(apiv1.WSIncoming{Text: ""}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" || f.Code != "empty_message" {
		t.Fatalf("want empty_message error frame, got %+v", f)
	}

	if err := conn.WriteJSON(apiv1.WSIncoming{Text: "halo"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i := 0; i < 5; i++ {
		f := readFrame(t, conn)
		if f.Type != "transcript" {
			continue
		}
		if !f.Transcript.Awaiting && len(f.Transcript.Messages) == 2 {
			if f.Transcript.Messages[1].Text != "halo juga" {
				t.Errorf("unexpected reply %+v", f.Transcript.Messages[1])
			}
			return
		}
	}
	t.Fatal("never received the resolved transcript")
}

func TestWatchConversation_Rejections(t *testing.T) {
	t.Run("unknown conversation is 404 before upgrade", func(t *testing.T) {
		h := newHarness(t)
		ts := httptest.NewServer(h.router("u1"))
		defer ts.Close()

		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "missing"), nil)
		if err == nil {
			t.Fatal("expected handshake failure")
		}
		if resp == nil || resp.StatusCode != http.StatusNotFound {
			t.Fatalf("want 404, got %+v", resp)
		}
	})

	t.Run("foreign origin is refused", func(t *testing.T) {
		h := newHarness(t, "https://promosi.example")
		r := h.router("u1")
		tr := openConversation(t, r)
		ts := httptest.NewServer(r)
		defer ts.Close()

		hdr := http.Header{"Origin": []string{"https://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, tr.ID), hdr)
		if err == nil {
			t.Fatal("expected handshake failure")
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Fatalf("want 403, got %+v", resp)
		}

		hdr = http.Header{"Origin": []string{"https://promosi.example"}}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, tr.ID), hdr)
		if err != nil {
			t.Fatalf("allowed origin: %v", err)
		}
		conn.Close()
	})

	t.Run("closing the conversation ends the stream", func(t *testing.T) {
		h := newHarness(t)
		r := h.router("u1")
		tr := openConversation(t, r)
		ts := httptest.NewServer(r)
		defer ts.Close()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, tr.ID), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		readFrame(t, conn)

		if rec := do(t, r, http.MethodDelete, "/api/v1/conversations/"+tr.ID, ""); rec.Code != http.StatusNoContent {
			t.Fatalf("delete: want 204, got %d", rec.Code)
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err = conn.ReadMessage()
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("want normal close, got %v", err)
		}
	})
}

//
// ---------------- jobs ----------------
//

func TestJobs_ListBindsQuery(t *testing.T) {
	h := newHarness(t)
	h.jobs.list = func(f model.JobFilter) ([]*model.JobListing, error) {
		return []*model.JobListing{{ID: "1", Title: "Analis Data"}}, nil
	}
	r := h.router("u1")

	rec := do(t, r, http.MethodGet, "/api/v1/jobs?q=analis&institution=BKN&status=HOT", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	body := decode[struct {
		Items []model.JobListing `json:"items"`
	}](t, rec)
	if len(body.Items) != 1 || body.Items[0].ID != "1" {
		t.Fatalf("items mismatch: %+v", body.Items)
	}
	want := model.JobFilter{SearchTerm: "analis", Institution: "BKN", Status: model.JobStatusHot}
	if h.jobs.lastList != want {
		t.Errorf("filter = %+v, want %+v", h.jobs.lastList, want)
	}

	if rec := do(t, r, http.MethodGet, "/api/v1/jobs?status=closed", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: want 400, got %d", rec.Code)
	}

	h.jobs.list = func(model.JobFilter) ([]*model.JobListing, error) { return nil, errors.New("db down") }
	if rec := do(t, r, http.MethodGet, "/api/v1/jobs", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("repo failure: want 500, got %d", rec.Code)
	}
}

func TestJobs_FacetsAndGet(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")

	rec := do(t, r, http.MethodGet, "/api/v1/jobs/facets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("facets: want 200, got %d", rec.Code)
	}
	if f := decode[model.JobFacets](t, rec); f.Total != 1 || f.Institutions[0] != "BKN" {
		t.Errorf("unexpected facets %+v", f)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/jobs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get: want 404, got %d", rec.Code)
	}
	if e := decode[apiv1.ErrorResponse](t, rec); e.Error != "job.not_found" {
		t.Errorf("error text = %q", e.Error)
	}
}

func TestJobs_Apply_AllPaths(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantText string
	}{
		{"201 created", nil, http.StatusCreated, ""},
		{"409 already applied", domain.ErrAlreadyApplied, http.StatusConflict, "apply.already_applied"},
		{"404 unknown job", domain.ErrNotFound, http.StatusNotFound, "job.not_found"},
		{"500 generic failure", fmt.Errorf("%w: boom", domain.ErrOperationFailed), http.StatusInternalServerError, "apply.failed"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t)
			h.jobs.apply = func(jobID, userID string) (*model.JobApplication, error) {
				if c.err != nil {
					return nil, c.err
				}
				return &model.JobApplication{ID: "a1", JobID: jobID, UserID: userID}, nil
			}
			rec := do(t, h.router("u1"), http.MethodPost, "/api/v1/jobs/j1/apply", "")
			if rec.Code != c.wantCode {
				t.Fatalf("want %d, got %d, body=%s", c.wantCode, rec.Code, rec.Body.String())
			}
			if c.err == nil {
				resp := decode[apiv1.ApplyResponse](t, rec)
				if resp.Application.JobID != "j1" || resp.Application.UserID != "u1" || resp.Message != "apply.success" {
					t.Errorf("unexpected response %+v", resp)
				}
				return
			}
			if e := decode[apiv1.ErrorResponse](t, rec); e.Error != c.wantText {
				t.Errorf("error text = %q, want %q", e.Error, c.wantText)
			}
		})
	}
}

func TestApplications_List(t *testing.T) {
	h := newHarness(t)
	rec := do(t, h.router("u1"), http.MethodGet, "/api/v1/applications", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	body := decode[struct {
		Items []model.JobApplication `json:"items"`
	}](t, rec)
	if len(body.Items) != 1 || body.Items[0].UserID != "u1" {
		t.Errorf("unexpected items %+v", body.Items)
	}
}

//
// ---------------- profile ----------------
//

func TestProfile_GetUpdate(t *testing.T) {
	h := newHarness(t)
	r := h.router("u1")

	rec := do(t, r, http.MethodGet, "/api/v1/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: want 200, got %d", rec.Code)
	}
	if p := decode[apiv1.ProfileResponse](t, rec); p.Profile.FullName != "Siti" {
		t.Errorf("unexpected profile %+v", p.Profile)
	}

	rec = do(t, r, http.MethodPut, "/api/v1/profile", `{"full_name":"Siti Rahma","phone":"0812"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: want 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	p := decode[apiv1.ProfileResponse](t, rec)
	if p.Profile.FullName != "Siti Rahma" || p.Message != "profile.updated" {
		t.Errorf("unexpected update response %+v", p)
	}

	rec = do(t, r, http.MethodPut, "/api/v1/profile", `{"full_name":"  "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name: want 422, got %d", rec.Code)
	}
	if e := decode[apiv1.ErrorResponse](t, rec); e.Error != "profile.invalid" {
		t.Errorf("error text = %q", e.Error)
	}

	if rec := do(t, h.router("ghost"), http.MethodGet, "/api/v1/profile", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: want 404, got %d", rec.Code)
	}
}
