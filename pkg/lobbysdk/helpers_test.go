package lobbysdk

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

type recordedCall struct {
	Method      string
	Path        string
	Auth        string
	ContentType string
	Query       url.Values
	Body        map[string]any
}

// fakeService records every call and dispatches by path.
type fakeService struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]http.HandlerFunc
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := recordedCall{
		Method:      r.Method,
		Path:        r.URL.Path,
		Auth:        r.Header.Get("Authorization"),
		ContentType: r.Header.Get("Content-Type"),
		Query:       r.URL.Query(),
	}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	f.mu.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeService) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestClient(t *testing.T, handlers map[string]http.HandlerFunc) (*Client, *credstore.Memory, *fakeService) {
	t.Helper()

	svc := &fakeService{handlers: handlers}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	store := credstore.NewMemory()
	return NewClient(srv.URL, store, slogx.Discard()), store, svc
}

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	body := map[string]any{"code": code, "msg": msg}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, 200, "ok", data)
	}
}

func status(code int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, code, code, msg, nil)
	}
}

func requireStored(t *testing.T, store *credstore.Memory, key, want string) {
	t.Helper()
	got, found, err := store.Get(t.Context(), key)
	require.NoError(t, err)
	require.True(t, found, "key %q missing", key)
	require.Equal(t, want, got)
}

func requireNotStored(t *testing.T, store *credstore.Memory, key string) {
	t.Helper()
	_, found, err := store.Get(t.Context(), key)
	require.NoError(t, err)
	require.False(t, found, "key %q should be absent", key)
}
