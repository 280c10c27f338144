package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsRouter(t *testing.T) (*chi.Mux, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry(), "/metrics")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/products", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("[]")) })
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r, m
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	r, m := newMetricsRouter(t)

	for _, path := range []string{"/products/1", "/products/2", "/products"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/products/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/products", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_UnmatchedRoutesShareOneLabel(t *testing.T) {
	r, m := newMetricsRouter(t)

	for _, path := range []string{"/nope", "/wp-admin/setup.php", "/products/1/extra"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", UnmatchedPath, "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestMetrics_SkipsMetricsPath(t *testing.T) {
	r, m := newMetricsRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg, "/metrics")
	require.NoError(t, err)

	_, err = NewMetrics(reg, "/metrics")
	assert.Error(t, err)
}
