package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"tailor-engine/internal/apperr"
	"tailor-engine/internal/config"
	"tailor-engine/internal/domain"
	"tailor-engine/internal/events"
	"tailor-engine/internal/extract"
	"tailor-engine/internal/pipeline"
	"tailor-engine/internal/scrape"
	"tailor-engine/internal/store"
)

type stubPages struct {
	html map[string]string
}

func (s stubPages) Fetch(_ context.Context, url string) (scrape.Page, error) {
	h, ok := s.html[url]
	if !ok {
		return scrape.Page{}, apperr.NotFound("fetch "+url, errors.New("status 404"))
	}
	return s.Build(url, h)
}

func (s stubPages) Build(url, html string) (scrape.Page, error) {
	return scrape.Page{Input: domain.RawJobInput{URL: url, RawHTML: html}}, nil
}

const techCorpHTML = "<html><head><title>TechCorp - Senior Software Engineer</title></head>" +
	"<body><p>We offer competitive compensation of $120K - $180K annually.</p></body></html>"

type testEnv struct {
	deps    Deps
	handler http.Handler
	db      *store.DB
}

func newTestEnv(t *testing.T, withDB bool) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	hub := events.NewHub()

	runner := &pipeline.Runner{
		Pages:  stubPages{html: map[string]string{"https://techcorp.example/jobs/1": techCorpHTML}},
		Parser: extract.NewParser(extract.WithLogger(log)),
		Hub:    hub,
		Log:    log,
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	cfg.App.DataDir = filepath.Dir(cfgPath)
	if err := config.SaveAtomic(cfgPath, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	var cfgVal, status atomic.Value
	cfgVal.Store(cfg)
	status.Store(BatchStatus{})

	env := &testEnv{deps: Deps{
		Hub:         hub,
		Log:         log,
		Runner:      runner,
		CfgVal:      &cfgVal,
		BatchStatus: &status,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}}

	if withDB {
		db, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		env.db = db
		env.deps.DB = db.Pool
		runner.DB = db.Pool
	}
	env.handler = Handler(env.deps, "test")
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["ok"] != true || body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, "/parse", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	e := decode[APIError](t, rec)
	if e.Error.Code != "method_not_allowed" || e.Error.RequestID != "abc-123" {
		t.Fatalf("error = %+v", e.Error)
	}
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatal("request id not echoed")
	}
}

func TestParse(t *testing.T) {
	env := newTestEnv(t, false)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		company    string
	}{
		{name: "text", body: `{"text":"Initech is hiring. Great benefits."}`, wantStatus: 200, company: "Initech"},
		{name: "fetch by url", body: `{"url":"https://techcorp.example/jobs/1"}`, wantStatus: 200, company: "TechCorp"},
		{name: "fetch not found", body: `{"url":"https://techcorp.example/jobs/404","fetch":true}`, wantStatus: 404, wantCode: "not_found"},
		{name: "fetch without url", body: `{"fetch":true}`, wantStatus: 400, wantCode: "invalid_input"},
		{name: "unknown field", body: `{"link":"x"}`, wantStatus: 400, wantCode: "invalid_input"},
		{name: "trailing data", body: `{"text":"a"} {"text":"b"}`, wantStatus: 400, wantCode: "invalid_input"},
		{name: "not json", body: `nope`, wantStatus: 400, wantCode: "invalid_input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/parse", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if tc.wantCode != "" {
				if e := decode[APIError](t, rec); e.Error.Code != tc.wantCode {
					t.Fatalf("code = %q", e.Error.Code)
				}
				return
			}
			if got := decode[map[string]any](t, rec)["company_name"]; got != tc.company {
				t.Fatalf("company_name = %v", got)
			}
		})
	}
}

func TestParseEmptyTextStillAnswers(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(t, http.MethodPost, "/parse", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["salary"] != "TBD" || body["confidence"] != "low" {
		t.Fatalf("body = %v", body)
	}
}

func TestBatch(t *testing.T) {
	env := newTestEnv(t, false)

	if rec := env.do(t, http.MethodPost, "/batch", `{"urls":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty batch status = %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/batch", `{"urls":["https://techcorp.example/jobs/1","https://techcorp.example/jobs/404"],"concurrency":2}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(5 * time.Second)
	var st BatchStatus
	for time.Now().Before(deadline) {
		st = decode[BatchStatus](t, env.do(t, http.MethodGet, "/batch/status", ""))
		if !st.Running {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if st.Running {
		t.Fatal("batch never finished")
	}
	if st.Total != 2 || st.Parsed != 1 || st.Failed != 1 || st.LastError == "" {
		t.Fatalf("status = %+v", st)
	}
	if st.LastOkAt != "" {
		t.Fatalf("a failed run should not set last_ok_at: %+v", st)
	}
}

func TestBatchConflict(t *testing.T) {
	env := newTestEnv(t, false)
	env.deps.BatchStatus.Store(BatchStatus{Running: true})

	rec := env.do(t, http.MethodPost, "/batch", `{"urls":["https://techcorp.example/jobs/1"]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestApplicationsRoutesNeedDB(t *testing.T) {
	env := newTestEnv(t, false)
	if rec := env.do(t, http.MethodGet, "/applications", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestApplicationsListAndDelete(t *testing.T) {
	env := newTestEnv(t, true)
	sub := env.deps.Hub.Subscribe()
	defer env.deps.Hub.Unsubscribe(sub)

	if rec := env.do(t, http.MethodPost, "/parse", `{"url":"https://techcorp.example/jobs/1"}`); rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d", rec.Code)
	}
	<-sub

	rec := env.do(t, http.MethodGet, "/applications?window=24h", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	apps := decode[[]store.Application](t, rec)
	if len(apps) != 1 || apps[0].Company != "TechCorp" {
		t.Fatalf("apps = %+v", apps)
	}

	id := apps[0].ID
	path := "/applications/" + jsonNumber(id)
	if rec := env.do(t, http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	select {
	case raw := <-sub:
		if !strings.Contains(raw, events.TypeApplicationDeleted) {
			t.Fatalf("event = %s", raw)
		}
	default:
		t.Fatal("no delete event")
	}

	if rec := env.do(t, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/applications/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestCheckpointLoopbackOnly(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodPost, "/db/checkpoint", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remote status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/db/checkpoint", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("loopback status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestConfigRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	got := decode[config.Config](t, env.do(t, http.MethodGet, "/config", ""))
	if got.App.Port != config.Default().App.Port {
		t.Fatalf("port = %d", got.App.Port)
	}

	path := decode[map[string]string](t, env.do(t, http.MethodGet, "/config/path", ""))
	if !filepath.IsAbs(path["path"]) {
		t.Fatalf("path = %q", path["path"])
	}

	got.App.Port = 0
	b, _ := json.Marshal(got)
	rec := env.do(t, http.MethodPut, "/config", string(b))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid put status = %d", rec.Code)
	}
	if v := decode[config.Validation](t, rec); len(v.Errors) == 0 {
		t.Fatal("expected validation errors")
	}

	got.App.Port = 40123
	got.Templates.Default = " Engineering_Manager "
	b, _ = json.Marshal(got)
	rec = env.do(t, http.MethodPut, "/config", string(b))
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	saved := decode[config.Config](t, env.do(t, http.MethodGet, "/config", ""))
	if saved.App.Port != 40123 || saved.Templates.Default != "engineering_manager" {
		t.Fatalf("saved = %+v", saved)
	}

	v := decode[config.Validation](t, env.do(t, http.MethodGet, "/config/validate", ""))
	if len(v.Errors) != 0 {
		t.Fatalf("validate errors = %v", v.Errors)
	}
}

func TestCorsPreflight(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/parse", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatal("origin not reflected")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		RequestID, Recover(zaptest.NewLogger(t)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if e := decode[APIError](t, rec); e.Error.Code != "internal_error" || e.Error.RequestID == "" {
		t.Fatalf("error = %+v", e.Error)
	}
}

func TestWriteAppError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: apperr.InvalidInput("bad url", nil), want: http.StatusBadRequest},
		{err: apperr.NotFound("gone", nil), want: http.StatusNotFound},
		{err: apperr.Unavailable("upstream 503", nil), want: http.StatusBadGateway},
		{err: apperr.Internal("oops", nil), want: http.StatusInternalServerError},
		{err: errors.New("plain"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteAppError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t, false)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	nextData := func() string {
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		t.Fatalf("stream ended: %v", sc.Err())
		return ""
	}

	if ping := nextData(); !strings.Contains(ping, `"type":"ping"`) {
		t.Fatalf("first event = %s", ping)
	}
	env.deps.Hub.Publish(events.MakeEvent("r1", events.TypePostingParsed, 1, nil))
	if evt := nextData(); !strings.Contains(evt, events.TypePostingParsed) {
		t.Fatalf("second event = %s", evt)
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
