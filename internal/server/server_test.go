package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/interviewace/api/internal/auth"
	"github.com/interviewace/api/internal/bookmark"
	"github.com/interviewace/api/internal/database"
	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/migrations"
	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/store"
	"github.com/interviewace/api/internal/voice"
)

type testEnv struct {
	srv      *httptest.Server
	store    *store.SQLiteStore
	sessions *session.Manager
	sched    *session.ManualScheduler
	voice    *fakeVoice
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, spaDir string) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := quietLogger()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(ctx, db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.NewSQLiteStore(db)
	if err := st.SeedDemo(ctx, logger, "x"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	passwords, err := auth.NewPasswords(10)
	if err != nil {
		t.Fatalf("passwords: %v", err)
	}

	catalog := interview.DefaultCatalog()
	sched := session.NewManualScheduler()
	selector := interview.NewSelector(catalog, interview.WithRand(rand.New(rand.NewPCG(1, 2))))
	sessions := session.NewManager(selector, sched, logger)
	t.Cleanup(sessions.Close)

	fv := &fakeVoice{}
	handler := newRouter(logger, Deps{
		Store:       st,
		Sessions:    sessions,
		Catalog:     catalog,
		Bookmarks:   bookmark.NewSQLiteKV(db),
		Passwords:   passwords,
		Tokens:      auth.NewTokens(strings.Repeat("k", 32), time.Hour),
		Voice:       fv,
		SPADir:      spaDir,
		CORSOrigins: []string{"*"},
	}, nil)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, sessions: sessions, sched: sched, voice: fv}
}

// client returns an HTTP client with its own cookie jar, i.e. its own
// visitor identity.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return v
}

func expectStatus(t *testing.T, got, want int, body []byte) {
	t.Helper()
	if got != want {
		t.Fatalf("status = %d, want %d (body: %s)", got, want, body)
	}
}

type fakeVoice struct {
	mu  sync.Mutex
	err error
}

func (f *fakeVoice) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeVoice) Connect(context.Context, voice.Credentials) (voice.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &fakeVoiceConn{closed: make(chan struct{})}, nil
}

type fakeVoiceConn struct {
	once   sync.Once
	closed chan struct{}
}

func (c *fakeVoiceConn) Receive(ctx context.Context) (voice.Message, error) {
	select {
	case <-ctx.Done():
		return voice.Message{}, ctx.Err()
	case <-c.closed:
		return voice.Message{}, io.EOF
	}
}

func (c *fakeVoiceConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

var frontendSetup = map[string]any{
	"field":         "frontend",
	"experience":    "junior",
	"companyType":   "startup",
	"questionCount": 3,
}

func (e *testEnv) createSession(t *testing.T, c *http.Client) session.Snapshot {
	t.Helper()
	code, body := e.do(t, c, http.MethodPost, "/api/sessions", frontendSetup)
	expectStatus(t, code, http.StatusCreated, body)
	return decode[session.Snapshot](t, body)
}

func TestSetupOptions(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	code, body := env.do(t, c, http.MethodGet, "/api/setup/options", nil)
	expectStatus(t, code, http.StatusOK, body)

	opts := decode[SetupOptionsResponse](t, body)
	if len(opts.Fields) != 4 || len(opts.Experiences) != 4 || len(opts.CompanyTypes) != 4 {
		t.Errorf("options = %d/%d/%d, want 4/4/4", len(opts.Fields), len(opts.Experiences), len(opts.CompanyTypes))
	}
	if opts.DefaultQuestionCount != 10 {
		t.Errorf("defaultQuestionCount = %d, want 10", opts.DefaultQuestionCount)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	code, body := env.do(t, c, http.MethodGet, "/api/categories", nil)
	expectStatus(t, code, http.StatusOK, body)
	if all := decode[[]interview.CategoryOption](t, body); len(all) != 21 {
		t.Errorf("all categories = %d, want 21", len(all))
	}

	code, body = env.do(t, c, http.MethodGet, "/api/categories?field=frontend", nil)
	expectStatus(t, code, http.StatusOK, body)
	fe := decode[[]interview.CategoryOption](t, body)
	if len(fe) != 9 {
		t.Errorf("frontend categories = %d, want 9", len(fe))
	}
	for _, opt := range fe {
		if opt.Icon == "" {
			t.Errorf("category %s has no icon", opt.ID)
		}
	}

	code, body = env.do(t, c, http.MethodGet, "/api/categories?field=mobile", nil)
	expectStatus(t, code, http.StatusBadRequest, body)
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{"unknown field", map[string]any{"field": "mobile", "experience": "junior", "companyType": "startup", "questionCount": 3}, "field must be one of"},
		{"missing experience", map[string]any{"field": "frontend", "companyType": "startup", "questionCount": 3}, "experience is required"},
		{"zero count", map[string]any{"field": "frontend", "experience": "junior", "companyType": "startup", "questionCount": 0}, "questionCount is required"},
		{"negative count", map[string]any{"field": "frontend", "experience": "junior", "companyType": "startup", "questionCount": -2}, "questionCount must be at least 1"},
		{"too many", map[string]any{"field": "frontend", "experience": "junior", "companyType": "startup", "questionCount": 51}, "questionCount must be at most 50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, c, http.MethodPost, "/api/sessions", tt.body)
			expectStatus(t, code, http.StatusBadRequest, body)
			if msg := decode[ErrorResponse](t, body).Error; !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	snap := env.createSession(t, c)
	if snap.State != session.StateAnswering || snap.Total != 3 || snap.Remaining != session.TimeLimit {
		t.Fatalf("new session = %+v", snap)
	}
	base := "/api/sessions/" + snap.ID

	code, body := env.do(t, c, http.MethodPost, base+"/previous", nil)
	expectStatus(t, code, http.StatusConflict, body)

	code, body = env.do(t, c, http.MethodPut, base+"/draft", DraftRequest{Answer: "closures capture variables"})
	expectStatus(t, code, http.StatusOK, body)

	code, body = env.do(t, c, http.MethodPost, base+"/next", nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Index != 1 || s.Draft != "" {
		t.Fatalf("after next: index=%d draft=%q", s.Index, s.Draft)
	}

	code, body = env.do(t, c, http.MethodPost, base+"/previous", nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Index != 0 || s.Draft != "closures capture variables" {
		t.Fatalf("after previous: index=%d draft=%q", s.Index, s.Draft)
	}

	code, body = env.do(t, c, http.MethodGet, base+"/summary", nil)
	expectStatus(t, code, http.StatusConflict, body)

	for range 3 {
		code, body = env.do(t, c, http.MethodPost, base+"/next", nil)
		expectStatus(t, code, http.StatusOK, body)
	}
	if s := decode[session.Snapshot](t, body); s.State != session.StateReviewing {
		t.Fatalf("state = %s, want reviewing", s.State)
	}

	code, body = env.do(t, c, http.MethodPost, base+"/next", nil)
	expectStatus(t, code, http.StatusConflict, body)

	code, body = env.do(t, c, http.MethodGet, base+"/summary", nil)
	expectStatus(t, code, http.StatusOK, body)
	sum := decode[session.Summary](t, body)
	if sum.Total != 3 || sum.Answered != 1 || sum.Completion != 33 {
		t.Errorf("summary = %d/%d (%d%%), want 1/3 (33%%)", sum.Answered, sum.Total, sum.Completion)
	}
	if sum.Items[1].Answer != session.NotAnswered {
		t.Errorf("unanswered item = %q, want %q", sum.Items[1].Answer, session.NotAnswered)
	}
}

func TestSessionCountdownAndPause(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	snap := env.createSession(t, c)
	base := "/api/sessions/" + snap.ID

	env.sched.Advance(5)
	code, body := env.do(t, c, http.MethodGet, base, nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Remaining != session.TimeLimit-5 {
		t.Fatalf("remaining = %d, want %d", s.Remaining, session.TimeLimit-5)
	}

	code, body = env.do(t, c, http.MethodPost, base+"/pause", nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); !s.Paused {
		t.Fatal("expected paused")
	}

	env.sched.Advance(10)
	code, body = env.do(t, c, http.MethodGet, base, nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Remaining != session.TimeLimit-5 {
		t.Errorf("remaining while paused = %d, want %d", s.Remaining, session.TimeLimit-5)
	}

	code, body = env.do(t, c, http.MethodPost, base+"/pause", nil)
	expectStatus(t, code, http.StatusOK, body)
	env.sched.Advance(session.TimeLimit - 5)
	code, body = env.do(t, c, http.MethodGet, base, nil)
	expectStatus(t, code, http.StatusOK, body)
	if s := decode[session.Snapshot](t, body); s.Index != 1 || s.Remaining != session.TimeLimit {
		t.Errorf("after expiry: index=%d remaining=%d, want 1/%d", s.Index, s.Remaining, session.TimeLimit)
	}
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	snap := env.createSession(t, c)

	code, body := env.do(t, c, http.MethodDelete, "/api/sessions/"+snap.ID, nil)
	expectStatus(t, code, http.StatusNoContent, body)

	code, body = env.do(t, c, http.MethodGet, "/api/sessions/"+snap.ID, nil)
	expectStatus(t, code, http.StatusNotFound, body)
	if env.sched.Live() != 0 {
		t.Errorf("live timers = %d, want 0", env.sched.Live())
	}
}

func TestSessionEvents(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)
	snap := env.createSession(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+"/api/sessions/"+snap.ID+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	events := make(chan string, 16)
	go func() {
		defer close(events)
		buf := make([]byte, 4096)
		var pending string
		for {
			n, err := resp.Body.Read(buf)
			pending += string(buf[:n])
			for {
				i := strings.Index(pending, "\n\n")
				if i < 0 {
					break
				}
				events <- pending[:i]
				pending = pending[i+2:]
			}
			if err != nil {
				return
			}
		}
	}()

	next := func() string {
		t.Helper()
		select {
		case ev := <-events:
			return ev
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}

	if ev := next(); !strings.HasPrefix(ev, "event: snapshot\n") {
		t.Fatalf("first event = %q", ev)
	}

	env.sched.Advance(1)
	if ev := next(); !strings.HasPrefix(ev, "event: tick\n") || !strings.Contains(ev, `"remaining":179`) {
		t.Fatalf("tick event = %q", ev)
	}

	code, body := env.do(t, c, http.MethodPost, "/api/sessions/"+snap.ID+"/next", nil)
	expectStatus(t, code, http.StatusOK, body)
	if ev := next(); !strings.HasPrefix(ev, "event: question\n") {
		t.Fatalf("next event = %q", ev)
	}

	code, body = env.do(t, c, http.MethodDelete, "/api/sessions/"+snap.ID, nil)
	expectStatus(t, code, http.StatusNoContent, body)
	if ev := next(); !strings.HasPrefix(ev, "event: ended\n") {
		t.Fatalf("end event = %q", ev)
	}
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	for _, path := range []string{"/api/sessions/nope", "/api/sessions/nope/summary", "/api/sessions/nope/events"} {
		code, body := env.do(t, c, http.MethodGet, path, nil)
		expectStatus(t, code, http.StatusNotFound, body)
	}
}

func TestAPINotFound(t *testing.T) {
	env := newTestEnv(t, "")
	c := env.client(t)

	code, body := env.do(t, c, http.MethodGet, "/api/does-not-exist", nil)
	expectStatus(t, code, http.StatusNotFound, body)
	if msg := decode[ErrorResponse](t, body).Error; msg != "not found" {
		t.Errorf("error = %q", msg)
	}
}
