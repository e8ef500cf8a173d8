package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.AuthAttempt("password", true)
	m.AuthAttempt("password", false)
	m.AuthAttempt("password", false)
	m.BlobDeleted(true)
	m.SetDeletionQueue(4)
	m.AccountPurged()

	out := scrape(t, m)
	assert.Contains(t, out, `auth_attempts_total{method="password",outcome="success"} 1`)
	assert.Contains(t, out, `auth_attempts_total{method="password",outcome="failure"} 2`)
	assert.Contains(t, out, `blob_deletions_total{outcome="success"} 1`)
	assert.Contains(t, out, `blob_deletion_queue_size 4`)
	assert.Contains(t, out, `accounts_purged_total 1`)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt("google", true)
		m.BlobDeleted(false)
		m.SetDeletionQueue(1)
		m.AccountPurged()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RequestsTotal.WithLabelValues("/clips", "GET", "200").Inc()

	out := scrape(t, m)
	assert.Contains(t, out, `http_requests_total{method="GET",route="/clips",status="200"} 1`)
	assert.Contains(t, out, `go_goroutines`)
}
