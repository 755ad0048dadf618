package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	m := New("test")
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("used_recently")
	m.ObserveVote("duplicate")
	m.ObserveStatusChange("used", 3)
	m.ObserveStatusChange("used", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("used_recently")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Votes.WithLabelValues("duplicate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("used")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSubmission("accepted")
	m.ObserveVote("recorded")
	m.ObserveRemoval()

	called := false
	handler := m.Instrument("/x", func(http.ResponseWriter, *http.Request) { called = true })
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.True(t, called)
}

func TestInstrumentAndExpose(t *testing.T) {
	m := New("test")
	handler := m.Instrument("/songs", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs", nil))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `test_http_request_duration_seconds_count{method="GET",route="/songs",status="418"} 1`), body)
}
