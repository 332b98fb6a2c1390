package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classiccarrry/classic-carrry-admin/internal/dashboard"
	"github.com/classiccarrry/classic-carrry-admin/internal/metrics"
	"github.com/classiccarrry/classic-carrry-admin/internal/notify"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
	"github.com/classiccarrry/classic-carrry-admin/internal/settings"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

const (
	adminLogin   = `{"success":true,"data":{"_id":"u1","name":"Ayesha","email":"admin@cc.pk","role":"admin","token":"tok-1"}}`
	adminProfile = `{"success":true,"data":{"_id":"u1","name":"Ayesha","email":"admin@cc.pk","role":"admin"}}`
)

type route struct {
	status int
	body   string
}

// storefrontStub stands in for the storefront API. Unknown routes answer
// 404, which the health probe still counts as reachable.
type storefrontStub struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]map[string]interface{}
	routes map[string]route
	srv    *httptest.Server
}

func newStorefrontStub(t *testing.T) *storefrontStub {
	f := &storefrontStub{
		bodies: make(map[string]map[string]interface{}),
		routes: make(map[string]route),
	}
	f.srv = httptest.NewServer(f)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *storefrontStub) handle(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: body}
}

func (f *storefrontStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	call := key
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	raw, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, call)
	var body map[string]interface{}
	if json.Unmarshal(raw, &body) == nil {
		f.bodies[key] = body
	}
	rt, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"message":"Route not found"}`)
		return
	}
	w.WriteHeader(rt.status)
	io.WriteString(w, rt.body)
}

// apiCalls returns the calls made under /api, leaving out health probes.
func (f *storefrontStub) apiCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.Contains(c, " /api/") {
			out = append(out, c)
		}
	}
	return out
}

func (f *storefrontStub) body(method, path string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

func (f *storefrontStub) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

type testEnv struct {
	stub    *storefrontStub
	server  *Server
	handler http.Handler
	notes   *notify.Channel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stub := newStorefrontStub(t)

	sess, err := session.New(&session.MemoryStore{})
	require.NoError(t, err)
	m := metrics.New()
	client := storefront.NewClient(storefront.Options{
		BaseURL:    stub.srv.URL + "/api",
		HTTPClient: stub.srv.Client(),
		Tokens:     sess,
		Metrics:    m,
	})
	notes := notify.New(time.Minute, nil)
	s := &Server{
		Gate:          session.NewGate(sess, client, time.Hour, nil),
		Notifications: notes,
		Views:         viewmodel.NewRegistry(viewmodel.Deps{Remote: client, Notifier: notes, Metrics: m}),
		Client:        client,
		Dashboard:     dashboard.New(client, nil),
		Settings:      settings.New(client, notes, nil),
		Metrics:       m,
	}
	return &testEnv{stub: stub, server: s, handler: NewRouter(s, nil), notes: notes}
}

// signIn boots the gate and logs in as an administrator.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, e.server.Gate.Retry(context.Background()))
	e.stub.handle(http.MethodPost, "/api/users/login", http.StatusOK, adminLogin)
	e.stub.handle(http.MethodGet, "/api/users/profile", http.StatusOK, adminProfile)
	rec := e.do(t, http.MethodPost, "/api/session", `{"email":"admin@cc.pk","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, session.PhaseAuthenticated, e.server.Gate.Phase())
	e.stub.reset()
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}
