package viewmodel

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/notify"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

type route struct {
	status int
	body   string
}

// fakeAPI records every request it receives and answers from a route table.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]map[string]interface{}
	routes map[string]route
	srv    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		bodies: make(map[string]map[string]interface{}),
		routes: make(map[string]route),
	}
	f.srv = httptest.NewServer(f)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: body}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	call := key
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	raw, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, call)
	if len(raw) > 0 {
		var body map[string]interface{}
		if json.Unmarshal(raw, &body) == nil {
			f.bodies[key] = body
		}
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

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Body(method, path string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func newDeps(f *fakeAPI) (Deps, *notify.Channel) {
	ch := notify.New(time.Minute, nil)
	client := storefront.NewClient(storefront.Options{
		BaseURL:    f.srv.URL + "/api",
		HTTPClient: f.srv.Client(),
	})
	return Deps{Remote: client, Notifier: ch}, ch
}

func newCoordinator(t *testing.T, resource string) (*Coordinator, *fakeAPI, *notify.Channel) {
	t.Helper()
	f := newFakeAPI(t)
	deps, ch := newDeps(f)
	rt, ok := models.FindResourceType(resource)
	require.True(t, ok)
	return NewCoordinator(NewList(rt, deps), deps), f, ch
}

func ids(items []models.Resource) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID()
	}
	return out
}

func requireNotification(t *testing.T, ch *notify.Channel, kind models.NotificationKind, message string) {
	t.Helper()
	n, ok := ch.Current()
	require.True(t, ok, "expected a notification")
	require.Equal(t, kind, n.Kind)
	require.Equal(t, message, n.Message)
}
