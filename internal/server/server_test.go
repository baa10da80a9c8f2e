package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/getlawrence/prdgate/internal/prd"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBacklog = `| ID | Title | Points | Score |
|---|---|---|---|
| W-1 | Export CSV | 3 | 3.0 |
| W-2 | Billing | 5 | 3.4 |
| W-3 | Search | ? | 4.0 |
`

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleDecision(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/decisions", decisionRequest{Backlog: testBacklog, ItemID: "w-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var d domain.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "W-1", d.ItemID)
	assert.False(t, d.GeneratePRD)
	assert.Equal(t, domain.RuleSkip, d.Rule)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/decisions", decisionRequest{Backlog: testBacklog, ItemID: "W-3"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.True(t, d.GeneratePRD)
	assert.Equal(t, domain.RuleMissingPoints, d.Rule)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.decisions.WithLabelValues("skip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.decisions.WithLabelValues("prd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.incomplete))
}

func TestHandleDecision_Errors(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/decisions", decisionRequest{Backlog: testBacklog, ItemID: "W-9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "backlog item not found")

	rec = doJSON(t, h, http.MethodPost, "/v1/decisions", decisionRequest{Backlog: "no tables here", ItemID: "W-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.parseErrors))

	rec = doJSON(t, h, http.MethodPost, "/v1/decisions", decisionRequest{Backlog: testBacklog})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing item_id")

	rec = doJSON(t, h, http.MethodPost, "/v1/decisions", map[string]string{"backlog": testBacklog, "item": "W-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/decisions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed")

	rec = doJSON(t, h, http.MethodGet, "/v1/scan", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/v1/decisions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHandleScan(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/scan", scanRequest{Backlog: testBacklog})
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, domain.Summary{Total: 3, GeneratePRD: 2, Skip: 1, Incomplete: 1}, report.Summary)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/scan", scanRequest{Backlog: testBacklog, ItemIDs: []string{"W-2"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Decisions, 1)
	assert.Equal(t, "W-2", report.Decisions[0].ItemID)
}

func TestRequestIDPropagation(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)
	_ = doJSON(t, s.Handler(), http.MethodPost, "/v1/decisions", decisionRequest{Backlog: testBacklog, ItemID: "W-2"})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `prdgate_decisions_total{outcome="prd"} 1`)
	assert.Contains(t, body, `prdgate_http_requests_total{code="200",route="/v1/decisions"} 1`)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ReturnsListenError(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil)
	err := s.Run(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil, WithRateLimit(0.001, 2))
	h := s.Handler()
	body := decisionRequest{Backlog: testBacklog, ItemID: "W-1"}

	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/v1/decisions", body).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/v1/decisions", body).Code)

	rec := doJSON(t, h, http.MethodPost, "/v1/decisions", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Retry-After"))

	// health and metrics stay reachable
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/healthz", nil).Code)

	// other clients have their own bucket
	req := httptest.NewRequest(http.MethodPost, "/v1/decisions", strings.NewReader(`{"backlog":"| ID | Points | Score |\n|---|---|---|\n| A | 1 | 4 |\n","item_id":"A"}`))
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestWithRateLimit_ZeroDisables(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil, WithRateLimit(0, 0))
	assert.Nil(t, s.limiter)
}

func TestRateLimit_RetryAfterFollowsRate(t *testing.T) {
	s := New(prd.DefaultPolicy(), nil, WithRateLimit(0.05, 1))
	h := s.Handler()
	body := decisionRequest{Backlog: testBacklog, ItemID: "W-1"}

	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/v1/decisions", body).Code)

	rec := doJSON(t, h, http.MethodPost, "/v1/scan", scanRequest{Backlog: testBacklog})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))
}

func TestRetryAfter(t *testing.T) {
	tests := map[time.Duration]string{
		0:                       "1",
		300 * time.Millisecond:  "1",
		time.Second:             "1",
		1500 * time.Millisecond: "2",
		20 * time.Second:        "20",
	}
	for delay, want := range tests {
		if got := retryAfter(delay); got != want {
			t.Fatalf("retryAfter(%v) = %q, want %q", delay, got, want)
		}
	}
}
