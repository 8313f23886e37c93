package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("")

	m.RecordRequest("POST", "/api/v1/auth/login", 200, 10*time.Millisecond)
	m.RecordRateLimitRejection("/api/v1/auth/login")
	m.RecordRateLimitRejection("/api/v1/auth/login")
	m.RecordFallback("ratelimit")
	m.RecordLockout()
	m.RecordAuthFailure("expired")
	m.RecordTokenIssued()
	m.RecordDownstreamRequest("login", 401, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/v1/auth/login", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rateLimitRejected.WithLabelValues("/api/v1/auth/login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeFallbacks.WithLabelValues("ratelimit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockoutsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authFailures.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokensIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downstreamRequests.WithLabelValues("login", "401")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/", 200, 0)
		m.RecordRateLimitRejection("/")
		m.RecordFallback("lockout")
		m.RecordLockout()
		m.RecordAuthFailure("malformed")
		m.RecordTokenIssued()
		m.RecordDownstreamRequest("signup", 0, 0)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("gateway")
	m.RecordLockout()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gateway_lockouts_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
