package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestWrap_InjectsTrace(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger_i.TraceId(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := NewPipeline(nil).Wrap(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(traceHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(traceHeader))
}

func TestWrap_GeneratesTraceWhenMissing(t *testing.T) {
	var seen string
	h := NewPipeline(nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger_i.TraceId(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(traceHeader))
}

func TestWrap_RateLimitsPerIP(t *testing.T) {
	calls := 0
	h := NewPipeline(NewIPRateLimiter(rate.Limit(0.001), 2)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ask/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, calls)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ask/health", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	first := l.GetLimiter("10.0.0.1")
	assert.Same(t, first, l.GetLimiter("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Second)
	l.GetLimiter("10.0.0.2")
	assert.Len(t, l.clients, 1)
	assert.NotSame(t, first, l.GetLimiter("10.0.0.1"))
}
