package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/generate", "/api/generate"},
		{"/api/generations/3f2b8e1c-1a2b-4c3d-8e9f-0a1b2c3d4e5f", "/api/generations/{id}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in))
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/generate", "403"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/generate", "403"))

	assert.Equal(t, before+1, after)
}

func TestMiddleware_SkipsHealth(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))

	assert.Equal(t, before, after)
}

func TestAdmissionEvaluated(t *testing.T) {
	denied := AdmissionDecisionsTotal.WithLabelValues("denied", string(domain.DenyDailyLimit))
	warned := QuotaWarningsTotal.WithLabelValues(string(domain.QuotaWarning90))
	d0, w0 := testutil.ToFloat64(denied), testutil.ToFloat64(warned)

	AdmissionEvaluated(domain.AdmissionDecision{
		DenyCode:     domain.DenyDailyLimit,
		QuotaWarning: domain.QuotaWarning90,
	})

	assert.Equal(t, d0+1, testutil.ToFloat64(denied))
	assert.Equal(t, w0+1, testutil.ToFloat64(warned))
}
