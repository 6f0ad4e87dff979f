package metrics

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/observability"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestPipelineStages(t *testing.T) {
	m := newTestMetrics(t)
	ctx := context.Background()

	m.OnEnumerateComplete(ctx, 5, 41, 3*time.Millisecond, nil)
	m.OnEnumerateComplete(ctx, 5, 0, time.Millisecond, stderrors.New("rule loop"))
	m.OnPlaceComplete(ctx, 41, time.Millisecond, nil)
	m.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues(StageEnumerate, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues(StageEnumerate, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues(StagePlace, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues(StageRender, "ok")))

	if got := testutil.ToFloat64(m.WordsTotal.WithLabelValues("5")); got != 41 {
		t.Errorf("WordsTotal[5] = %v, want 41", got)
	}
	if got := testutil.CollectAndCount(m.StageDuration); got != 3 {
		t.Errorf("StageDuration series = %d, want 3", got)
	}
}

func TestCacheCounters(t *testing.T) {
	m := newTestMetrics(t)
	ctx := context.Background()

	m.OnCacheMiss(ctx, "tiling")
	m.OnCacheSet(ctx, "tiling", 1024)
	m.OnCacheHit(ctx, "tiling")
	m.OnCacheHit(ctx, "tiling")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("tiling", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("tiling", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("tiling", "set")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.CacheBytes.WithLabelValues("tiling")))
}

func TestServerRequests(t *testing.T) {
	m := newTestMetrics(t)
	ctx := context.Background()

	m.OnRequest(ctx, http.MethodGet, "/v1/profile")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))

	m.OnResponse(ctx, http.MethodGet, "/v1/profile", http.StatusOK, 2*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/v1/profile", "200")))
}

func TestRegisterInstallsHooks(t *testing.T) {
	m := newTestMetrics(t)
	m.Register()
	t.Cleanup(observability.Reset)

	observability.Cache().OnCacheHit(context.Background(), "render")
	observability.Pipeline().OnPlaceComplete(context.Background(), 3, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("render", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues(StagePlace, "ok")))
}

func TestHandlerExposition(t *testing.T) {
	m := newTestMetrics(t)
	m.OnCacheMiss(context.Background(), "tiling")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	if !strings.Contains(string(body), `hypertile_cache_requests_total{key_type="tiling",result="miss"} 1`) {
		t.Errorf("exposition missing cache counter:\n%s", body)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
