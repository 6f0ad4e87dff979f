package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/observability"
	"github.com/matzehuels/hypertile/pkg/pipeline"
	"github.com/matzehuels/hypertile/pkg/render/sink"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return New(Config{Runner: pipeline.NewRunner(fc, nil, nil), MaxDepth: 3})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeBody[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/profile?n=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[ProfileResponse](t, w)
	assert.Equal(t, 0.0, resp.Curvature)
	assert.Equal(t, 0.5, resp.KleinValue)
	assert.Equal(t, 0.5, resp.CellWidth)
	assert.Equal(t, "euclidean", resp.Name)

	w = do(t, s, http.MethodGet, "/v1/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hyperbolic", decodeBody[ProfileResponse](t, w).Name)

	tests := []struct {
		query string
		code  string
	}{
		{"n=2", "INVALID_CONFIG"},
		{"n=five", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		w := do(t, s, http.MethodGet, "/v1/profile?"+tt.query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.query)
		assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, w).Code, tt.query)
	}
}

func TestReduce(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/reduce", `{"words": ["rl", "ll", "rrr", "uu"], "trace": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[ReduceResponse](t, w)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, "order-5", resp.RuleSet)
	assert.Equal(t, "", resp.Results[0].Canonical)
	assert.Equal(t, "", resp.Results[1].Canonical)
	assert.Equal(t, "", resp.Results[2].Canonical)
	assert.Equal(t, "uu", resp.Results[3].Canonical)
	assert.NotEmpty(t, resp.Results[0].Steps)
	assert.Empty(t, resp.Results[3].Steps)
}

func TestReduceErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"no words", `{"words": []}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad json", `{"words": [`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"wrds": ["u"]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad symbol", `{"words": ["ux"]}`, http.StatusBadRequest, "INVALID_WORD"},
		{"non-convergent", `{"words": ["u"], "rules": {"rules": [{"from": "u", "to": "uu"}]}}`, 422, "NON_CONVERGENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/reduce", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeBody[ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestTiles(t *testing.T) {
	s := newTestServer(t)
	body := `{"tiles_per_vertex": 4, "depth": 1}`

	w := do(t, s, http.MethodPost, "/v1/tiles", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[TilesResponse](t, w)
	assert.Equal(t, 5, resp.Words)
	assert.False(t, resp.Cached)

	doc, err := sink.DecodeJSON(resp.Document)
	require.NoError(t, err)
	words := make([]string, len(doc.Tiles))
	for i, r := range doc.Tiles {
		words[i] = r.Word
	}
	assert.Equal(t, []string{"", "u", "ru", "lu", "rru"}, words)

	w = do(t, s, http.MethodPost, "/v1/tiles", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[TilesResponse](t, w).Cached)
}

func TestTilesDepthLimit(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/v1/tiles", `{"depth": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Error, "server limit")
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	body := `{"depth": 2, "labels": true}`

	w := do(t, s, http.MethodPost, "/v1/render/svg", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Len(t, w.Header().Get("X-Run-ID"), 36)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("<svg")))

	w = do(t, s, http.MethodPost, "/v1/render/svg", body)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = do(t, s, http.MethodPost, "/v1/render/dot", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PARTIAL", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), "digraph")
}

func TestRenderErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		path   string
		body   string
		status int
		code   string
	}{
		{"/v1/render/gif", `{}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"/v1/render/svg", `{"tiles_per_vertex": 3, "projection": "klein"}`, http.StatusBadRequest, "INVALID_PROJECTION"},
		{"/v1/render/svg", `{"exclude": ["x"]}`, http.StatusBadRequest, "INVALID_WORD"},
		{"/v1/render/svg", `{"depth": 3, "max_tiles": 10}`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		w := do(t, s, http.MethodPost, tt.path, tt.body)
		assert.Equal(t, tt.status, w.Code, "%s %s: %s", tt.path, tt.body, w.Body.String())
		assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, w).Code, "%s %s", tt.path, tt.body)
	}
}

func TestWalk(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/walk", `{"tiles_per_vertex": 4, "script": "forward 0.5; turn 90; forward 0.5", "depth": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[WalkResponse](t, w)
	require.Len(t, resp.Frames, 3)
	assert.InDelta(t, 0.5, resp.Frames[0].Position[2], 1e-9)
	assert.InDelta(t, 90, resp.Frames[1].Heading, 1e-9)
	assert.InDelta(t, 0.5, resp.Frames[2].Position[0], 1e-9)
	assert.Equal(t, 0.0, resp.Globals.Curvature)
	require.NotNil(t, resp.Nearest)

	w = do(t, s, http.MethodPost, "/v1/walk", `{"commands": [{"action": "forward", "amount": 0.1}], "depth": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeBody[WalkResponse](t, w)
	require.NotNil(t, resp.Nearest)
	assert.Equal(t, "", *resp.Nearest)
}

func TestWalkErrors(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{
		`{"script": "jump 1"}`,
		`{"commands": [{"action": "jump", "amount": 1}]}`,
		`{"tiles_per_vertex": 2}`,
		`{"depth": 9}`,
	} {
		w := do(t, s, http.MethodPost, "/v1/walk", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestNotFound(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/v2/tiles", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody[ErrorResponse](t, w).Code)
}

func TestBodyLimit(t *testing.T) {
	fc := cache.NewNullCache()
	s := New(Config{Runner: pipeline.NewRunner(fc, nil, nil), MaxBodyBytes: 16})
	w := do(t, s, http.MethodPost, "/v1/reduce", `{"words": ["uuuuuuuuuuuuuuuuuuuu"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type serverHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *serverHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestServerHooks(t *testing.T) {
	hooks := &serverHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/v1/profile?n=5", "")
	do(t, s, http.MethodPost, "/v1/render/gif", "{}")

	assert.Equal(t, []string{"/v1/profile", "/v1/render/{format}"}, hooks.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusBadRequest}, hooks.status)
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRateLimit(t *testing.T) {
	s := New(Config{Runner: pipeline.NewRunner(cache.NewNullCache(), nil, nil), RateLimit: 0.001, RateBurst: 2})

	for i := range 2 {
		if w := do(t, s, http.MethodGet, "/v1/profile?n=4", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}
	w := do(t, s, http.MethodGet, "/v1/profile?n=4", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody[ErrorResponse](t, w).Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// Health checks are outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, do(t, newTestServer(t), http.MethodGet, "/metrics", "").Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hypertile_up 1\n"))
	})
	s := New(Config{Runner: pipeline.NewRunner(cache.NewNullCache(), nil, nil), Metrics: metrics})
	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hypertile_up 1\n", w.Body.String())
}
